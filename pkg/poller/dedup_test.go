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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupMarkThenSeen(t *testing.T) {
	c := newDedupCache(10, 5)

	assert.False(t, c.seen(7))

	c.mark(7)
	assert.True(t, c.seen(7))
}

func TestDedupEvictionRetainsMostRecent(t *testing.T) {
	c := newDedupCache(10, 5)

	for id := 1; id <= 11; id++ {
		c.mark(id)
	}

	c.evict()

	assert.Equal(t, 5, c.len())

	// Exactly the five most recently marked survive.
	for id := 7; id <= 11; id++ {
		assert.True(t, c.seen(id), "id %d should be retained", id)
	}

	for id := 1; id <= 6; id++ {
		assert.False(t, c.seen(id), "id %d should be evicted", id)
	}
}

func TestDedupEvictionNoopBelowHighWater(t *testing.T) {
	c := newDedupCache(10, 5)

	for id := 1; id <= 10; id++ {
		c.mark(id)
	}

	c.evict()

	assert.Equal(t, 10, c.len())
	assert.True(t, c.seen(1))
}

func TestDedupRemarkRefreshesRecency(t *testing.T) {
	c := newDedupCache(10, 5)

	for id := 1; id <= 10; id++ {
		c.mark(id)
	}

	// Re-marking id 1 moves it to the most-recent end, so the next
	// eviction keeps it.
	c.mark(1)
	c.mark(11)

	c.evict()

	assert.True(t, c.seen(1))
	assert.False(t, c.seen(2))
	assert.Equal(t, 5, c.len())
}

func TestDedupClear(t *testing.T) {
	c := newDedupCache(10, 5)
	c.mark(1)
	c.mark(2)

	c.clear()

	assert.Equal(t, 0, c.len())
	assert.False(t, c.seen(1))
}
