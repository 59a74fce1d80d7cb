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
	"errors"

	"github.com/carverauto/odoosync/pkg/logger"
	"github.com/carverauto/odoosync/pkg/models"
)

var (
	errNoSources       = errors.New("at least one source is required")
	errNATSURLRequired = errors.New("nats url is required")
)

// Config is the bridge service configuration: the monitored Odoo sources
// and the downstream delivery target.
type Config struct {
	Sources        []*models.SourceConfig `json:"sources"`
	NATSURL        string                 `json:"nats_url"`
	SubjectPrefix  string                 `json:"subject_prefix,omitempty"`
	RequestSubject string                 `json:"request_subject,omitempty"`
	Logging        *logger.Config         `json:"logging,omitempty"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errNoSources
	}

	if c.NATSURL == "" {
		return errNATSURLRequired
	}

	for _, source := range c.Sources {
		if err := source.Validate(); err != nil {
			return err
		}
	}

	return nil
}
