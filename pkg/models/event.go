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
	"time"
)

// odooDatetimeLayout is the textual timestamp encoding used by Odoo
// datetime fields, always UTC with second precision.
const odooDatetimeLayout = "2006-01-02 15:04:05"

// EventKind classifies a change event.
type EventKind int

const (
	// EventCreated marks a record whose creation produced this event.
	EventCreated EventKind = iota
	// EventModified marks a record changed after creation.
	EventModified
)

// String returns the wire token for the kind, used in message identities
// and delivery payloads.
func (k EventKind) String() string {
	if k == EventCreated {
		return "create"
	}

	return "write"
}

// ChangeEvent is an immutable description of one detected record change.
type ChangeEvent struct {
	Model     string
	RecordID  int
	Kind      EventKind
	Record    map[string]interface{}
	Timestamp time.Time
	Fields    []string
}

// NewChangeEvent builds an event from a fetched record map. The change
// timestamp is parsed from the tracking field, falling back to now when
// the value is absent or malformed.
func NewChangeEvent(model string, record map[string]interface{}, kind EventKind, trackingField string) ChangeEvent {
	id, _ := RecordID(record)

	timestamp := time.Now().UTC()

	if raw, ok := record[trackingField].(string); ok {
		if parsed, err := time.ParseInLocation(odooDatetimeLayout, raw, time.UTC); err == nil {
			timestamp = parsed
		}
	}

	fields := make([]string, 0, len(record))
	for name := range record {
		fields = append(fields, name)
	}

	return ChangeEvent{
		Model:     model,
		RecordID:  id,
		Kind:      kind,
		Record:    record,
		Timestamp: timestamp,
		Fields:    fields,
	}
}

// Variables returns the delivery payload handed to the correlation
// consumer alongside the idempotency key.
func (e ChangeEvent) Variables() map[string]interface{} {
	return map[string]interface{}{
		"odooModel":     e.Model,
		"odooRecordId":  e.RecordID,
		"odooEventType": e.Kind.String(),
		"odooRecord":    e.Record,
		"odooTimestamp": e.Timestamp.Format(time.RFC3339),
		"odooFields":    e.Fields,
	}
}

// FormatOdooDatetime renders t in the Odoo datetime encoding (UTC,
// second precision).
func FormatOdooDatetime(t time.Time) string {
	return t.UTC().Format(odooDatetimeLayout)
}

// RecordID extracts the integer identifier from a fetched record map.
// JSON decoding yields float64 for numbers; int is accepted for records
// built in-process.
func RecordID(record map[string]interface{}) (int, bool) {
	switch v := record["id"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
