/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package poller

const (
	dedupHighWater = 1000
	dedupRetain    = 500
)

// dedupCache is a bounded set of already-delivered record ids. It keeps
// marking order so eviction deterministically retains the most recently
// marked entries: an order slice provides recency, a set provides O(1)
// membership.
//
// The cache only saves redundant deliveries within one process lifetime;
// cross-restart dedup is the broker's job via the message identity.
type dedupCache struct {
	order     []int
	present   map[int]struct{}
	highWater int
	retain    int
}

func newDedupCache(highWater, retain int) *dedupCache {
	return &dedupCache{
		order:     make([]int, 0, highWater),
		present:   make(map[int]struct{}, highWater),
		highWater: highWater,
		retain:    retain,
	}
}

// seen reports whether id was marked and not yet evicted.
func (c *dedupCache) seen(id int) bool {
	_, ok := c.present[id]
	return ok
}

// mark records id as delivered. Re-marking refreshes its recency.
func (c *dedupCache) mark(id int) {
	if c.seen(id) {
		for i, existing := range c.order {
			if existing == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	} else {
		c.present[id] = struct{}{}
	}

	c.order = append(c.order, id)
}

// evict drops the oldest entries once the high-water mark is exceeded,
// retaining exactly the most recently marked ids.
func (c *dedupCache) evict() {
	if len(c.order) <= c.highWater {
		return
	}

	cut := len(c.order) - c.retain
	for _, id := range c.order[:cut] {
		delete(c.present, id)
	}

	c.order = append(c.order[:0], c.order[cut:]...)
}

// len returns the number of tracked ids.
func (c *dedupCache) len() int {
	return len(c.order)
}

// clear discards all tracked ids.
func (c *dedupCache) clear() {
	c.order = c.order[:0]
	c.present = make(map[int]struct{}, c.highWater)
}
