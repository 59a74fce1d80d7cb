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
	"time"

	"github.com/carverauto/odoosync/pkg/odoo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDomainWindowCondition(t *testing.T) {
	lastPoll := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	domain := buildDomain(lastPoll, "write_date", nil)

	require.Len(t, domain, 1)
	assert.Equal(t, []interface{}{"write_date", ">", "2024-01-01 00:00:00"}, domain[0])
}

func TestBuildDomainConjoinsExtraFilter(t *testing.T) {
	lastPoll := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	extra := odoo.And(odoo.Condition("state", "=", "sale"))

	domain := buildDomain(lastPoll, "write_date", extra)

	require.Len(t, domain, 2)
	assert.Equal(t, []interface{}{"state", "=", "sale"}, domain[1])
}

func TestBuildDomainEncodesUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	lastPoll := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	domain := buildDomain(lastPoll, "write_date", nil)

	assert.Equal(t, []interface{}{"write_date", ">", "2024-01-01 05:00:00"}, domain[0])
}

func TestBuildFieldsAlwaysIncludesBase(t *testing.T) {
	fields := buildFields("write_date", nil)
	assert.Equal(t, []string{"id", "create_date", "write_date"}, fields)
}

func TestBuildFieldsAddsTrackingAndCustom(t *testing.T) {
	fields := buildFields("date_order", []string{"name", "partner_id"})
	assert.Equal(t, []string{"id", "create_date", "write_date", "date_order", "name", "partner_id"}, fields)
}

func TestBuildFieldsDeduplicatesPreservingOrder(t *testing.T) {
	fields := buildFields("write_date", []string{"name", "id", "name", "create_date"})
	assert.Equal(t, []string{"id", "create_date", "write_date", "name"}, fields)
}
