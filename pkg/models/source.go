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

package models

import (
	"errors"
	"time"
)

// Trigger condition tokens. An empty condition behaves like TriggerBoth.
const (
	TriggerNew      = "NEW"
	TriggerModified = "MODIFIED"
	TriggerBoth     = "BOTH"
)

const (
	minPollInterval     = 10 * time.Second
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 50
	maxBatchSize        = 100
	defaultTriggerField = "write_date"
)

var (
	errEndpointRequired = errors.New("source endpoint is required")
	errDatabaseRequired = errors.New("source database is required")
	errAPIKeyRequired   = errors.New("source api key is required")
	errModelRequired    = errors.New("source model is required")
)

// SourceConfig describes one monitored Odoo model: where to reach the
// server and how to poll for changes.
type SourceConfig struct {
	Endpoint         string   `json:"endpoint"`
	Database         string   `json:"database"`
	APIKey           string   `json:"api_key"`
	Model            string   `json:"model"`
	PollInterval     Duration `json:"poll_interval,omitempty"`
	TriggerField     string   `json:"trigger_field,omitempty"`
	TriggerCondition string   `json:"trigger_condition,omitempty"`
	FilterDomain     string   `json:"filter_domain,omitempty"`
	Fields           string   `json:"fields,omitempty"`
	BatchSize        int      `json:"batch_size,omitempty"`
}

// Validate implements config.Validator.
func (c *SourceConfig) Validate() error {
	if c.Endpoint == "" {
		return errEndpointRequired
	}

	if c.Database == "" {
		return errDatabaseRequired
	}

	if c.APIKey == "" {
		return errAPIKeyRequired
	}

	if c.Model == "" {
		return errModelRequired
	}

	return nil
}

// EffectivePollInterval returns the configured interval clamped to the
// minimum floor, or the default when unset.
func (c *SourceConfig) EffectivePollInterval() time.Duration {
	interval := time.Duration(c.PollInterval)
	if interval <= 0 {
		return defaultPollInterval
	}

	if interval < minPollInterval {
		return minPollInterval
	}

	return interval
}

// EffectiveBatchSize clamps the batch size to [1, 100], defaulting to 50.
func (c *SourceConfig) EffectiveBatchSize() int {
	if c.BatchSize == 0 {
		return defaultBatchSize
	}

	if c.BatchSize < 1 {
		return 1
	}

	if c.BatchSize > maxBatchSize {
		return maxBatchSize
	}

	return c.BatchSize
}

// EffectiveTriggerField returns the tracking field used for change
// detection, defaulting to the record's last-modified timestamp.
func (c *SourceConfig) EffectiveTriggerField() string {
	if c.TriggerField != "" {
		return c.TriggerField
	}

	return defaultTriggerField
}

// TriggerOnCreate reports whether newly created records fire events.
func (c *SourceConfig) TriggerOnCreate() bool {
	return c.TriggerCondition == TriggerNew || c.TriggerCondition == TriggerBoth || c.TriggerCondition == ""
}

// TriggerOnModify reports whether modified records fire events.
func (c *SourceConfig) TriggerOnModify() bool {
	return c.TriggerCondition == TriggerModified || c.TriggerCondition == TriggerBoth || c.TriggerCondition == ""
}
