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
	"github.com/carverauto/odoosync/pkg/models"
)

// classify decides whether a fetched record is a creation or a
// modification, gated by the configured trigger conditions. The second
// return is false when the record should be dropped.
//
// A record counts as created only when both timestamps are present and
// equal. A missing timestamp always classifies as modified: a partial
// field projection must never look like a new record.
func classify(record map[string]interface{}, triggerOnCreate, triggerOnModify bool) (models.EventKind, bool) {
	createDate, createOK := timestampValue(record, "create_date")
	writeDate, writeOK := timestampValue(record, "write_date")

	if createOK && writeOK && createDate == writeDate {
		if triggerOnCreate {
			return models.EventCreated, true
		}

		return 0, false
	}

	if triggerOnModify {
		return models.EventModified, true
	}

	return 0, false
}

// timestampValue reads a datetime field. Odoo encodes unset datetimes as
// JSON false, which counts as missing.
func timestampValue(record map[string]interface{}, field string) (string, bool) {
	value, ok := record[field].(string)
	return value, ok && value != ""
}
