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
	"time"

	"github.com/carverauto/odoosync/pkg/models"
	"github.com/carverauto/odoosync/pkg/odoo"
)

// Fields every fetch projects regardless of configuration: the
// identifier plus both timestamps the classifier compares.
var baseFields = []string{"id", "create_date", "write_date"}

// buildDomain produces the "changed since last poll" filter: the
// tracking field compared against the window start in Odoo's datetime
// encoding, conjoined with the caller's extra filter expression.
func buildDomain(lastPoll time.Time, trackingField string, extra odoo.Domain) odoo.Domain {
	domain := odoo.And(odoo.Condition(trackingField, ">", models.FormatOdooDatetime(lastPoll)))

	return append(domain, extra...)
}

// buildFields computes the field projection: base fields, the tracking
// field and any caller-requested fields, de-duplicated preserving first
// occurrence.
func buildFields(trackingField string, custom []string) []string {
	fields := make([]string, 0, len(baseFields)+1+len(custom))
	present := make(map[string]struct{}, cap(fields))

	add := func(name string) {
		if _, ok := present[name]; ok {
			return
		}

		present[name] = struct{}{}
		fields = append(fields, name)
	}

	for _, name := range baseFields {
		add(name)
	}

	add(trackingField)

	for _, name := range custom {
		add(name)
	}

	return fields
}
