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

package odoo

import (
	"encoding/json"
	"strings"
)

// Prefix combinators of the Odoo domain language. Leaves are
// [field, operator, value] triples; combinators precede their operands.
const (
	OpAnd = "&"
	OpOr  = "|"
	OpNot = "!"
)

// Domain is a search filter expression in Odoo's prefix notation.
type Domain []interface{}

// Condition builds a single [field, operator, value] leaf.
func Condition(field, operator string, value interface{}) []interface{} {
	return []interface{}{field, operator, value}
}

// And appends terms joined by the implicit AND of the domain language.
// Terms at the top level of a domain are conjoined without an explicit
// "&" combinator.
func And(terms ...interface{}) Domain {
	d := make(Domain, 0, len(terms))
	return append(d, terms...)
}

// Or joins two terms with the "|" prefix combinator.
func Or(left, right interface{}) Domain {
	return Domain{OpOr, left, right}
}

// Not negates a term with the "!" prefix combinator.
func Not(term interface{}) Domain {
	return Domain{OpNot, term}
}

// ParseDomain parses a JSON-encoded domain expression. An empty string
// yields an empty domain; malformed input returns an error so callers can
// degrade to no extra filter.
func ParseDomain(raw string) (Domain, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Domain{}, nil
	}

	var d Domain
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}

	return d, nil
}

// ParseFields parses a field-projection list from either a JSON array or
// a bare single field name. Empty input means all fields.
func ParseFields(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, err
		}

		return fields, nil
	}

	return []string{raw}, nil
}
