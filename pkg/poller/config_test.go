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

	"github.com/carverauto/odoosync/pkg/models"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Sources: []*models.SourceConfig{testSource()},
		NATSURL: "nats://localhost:4222",
	}

	assert.NoError(t, valid.Validate())

	noSources := Config{NATSURL: "nats://localhost:4222"}
	assert.ErrorIs(t, noSources.Validate(), errNoSources)

	noNATS := Config{Sources: []*models.SourceConfig{testSource()}}
	assert.ErrorIs(t, noNATS.Validate(), errNATSURLRequired)
}

func TestConfigValidatePropagatesSourceErrors(t *testing.T) {
	cfg := Config{
		Sources: []*models.SourceConfig{{Model: "res.partner"}},
		NATSURL: "nats://localhost:4222",
	}

	assert.Error(t, cfg.Validate())
}
