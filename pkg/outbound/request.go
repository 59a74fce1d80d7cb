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

// Package outbound executes mutating operations against Odoo on behalf
// of a calling workflow: CRUD, search, count and arbitrary method calls,
// each failure mapped to a distinct external error code.
package outbound

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carverauto/odoosync/pkg/odoo"
)

// Operation names accepted by the executor.
const (
	OpCreate      = "CREATE"
	OpRead        = "READ"
	OpUpdate      = "UPDATE"
	OpDelete      = "DELETE"
	OpSearch      = "SEARCH"
	OpSearchRead  = "SEARCH_READ"
	OpSearchCount = "SEARCH_COUNT"
	OpCallMethod  = "CALL_METHOD"
)

var (
	errOperationRequired  = errors.New("operation is required")
	errModelRequired      = errors.New("model is required")
	errValuesRequired     = errors.New("operation requires 'values'")
	errRecordIDsRequired  = errors.New("operation requires record ids")
	errMethodNameRequired = errors.New("CALL_METHOD requires methodName")
	errUnknownOperation   = errors.New("unsupported operation")
)

// FieldList accepts either a JSON array of field names or a JSON-encoded
// string holding one ("name" or "[\"name\",\"email\"]"), the two shapes
// workflow templates produce.
type FieldList []string

func (l *FieldList) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err == nil {
		*l = names
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("fields must be a list or JSON array string: %w", err)
	}

	names, err := odoo.ParseFields(raw)
	if err != nil {
		return fmt.Errorf("invalid fields JSON: %w", err)
	}

	*l = names

	return nil
}

// DomainExpr accepts either an inline JSON domain or a JSON-encoded
// string holding one.
type DomainExpr odoo.Domain

func (d *DomainExpr) UnmarshalJSON(b []byte) error {
	var domain odoo.Domain
	if err := json.Unmarshal(b, &domain); err == nil {
		*d = DomainExpr(domain)
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("domain must be a list or JSON array string: %w", err)
	}

	domain, err := odoo.ParseDomain(raw)
	if err != nil {
		return fmt.Errorf("invalid domain JSON: %w", err)
	}

	*d = DomainExpr(domain)

	return nil
}

// Request describes one mutating operation.
type Request struct {
	Auth       odoo.Auth              `json:"authentication"`
	Operation  string                 `json:"operation"`
	Model      string                 `json:"model"`
	RecordID   int                    `json:"recordId,omitempty"`
	RecordIDs  []int                  `json:"recordIds,omitempty"`
	Values     map[string]interface{} `json:"values,omitempty"`
	Fields     FieldList              `json:"fields,omitempty"`
	Domain     DomainExpr             `json:"domain,omitempty"`
	Limit      int                    `json:"limit,omitempty"`
	Offset     int                    `json:"offset,omitempty"`
	MethodName string                 `json:"methodName,omitempty"`
	MethodArgs map[string]interface{} `json:"methodArgs,omitempty"`
}

// EffectiveRecordIDs merges the single-id and id-list inputs.
func (r *Request) EffectiveRecordIDs() []int {
	if len(r.RecordIDs) > 0 {
		return r.RecordIDs
	}

	if r.RecordID != 0 {
		return []int{r.RecordID}
	}

	return nil
}

// Validate checks the per-operation required inputs.
func (r *Request) Validate() error {
	if r.Operation == "" {
		return errOperationRequired
	}

	if r.Model == "" {
		return errModelRequired
	}

	switch r.Operation {
	case OpCreate:
		if len(r.Values) == 0 {
			return fmt.Errorf("%w: %s", errValuesRequired, r.Operation)
		}
	case OpRead, OpDelete:
		if len(r.EffectiveRecordIDs()) == 0 {
			return fmt.Errorf("%w: %s", errRecordIDsRequired, r.Operation)
		}
	case OpUpdate:
		if len(r.EffectiveRecordIDs()) == 0 {
			return fmt.Errorf("%w: %s", errRecordIDsRequired, r.Operation)
		}

		if len(r.Values) == 0 {
			return fmt.Errorf("%w: %s", errValuesRequired, r.Operation)
		}
	case OpCallMethod:
		if r.MethodName == "" {
			return errMethodNameRequired
		}
	case OpSearch, OpSearchRead, OpSearchCount:
		// Domain is optional; an empty domain matches everything.
	default:
		return fmt.Errorf("%w: %s", errUnknownOperation, r.Operation)
	}

	return nil
}
