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
	"context"
	"fmt"
)

// Create inserts a new record and returns its identifier. The JSON-2 API
// takes vals_list and answers with the list of created ids.
func (c *Client) Create(ctx context.Context, model string, values map[string]interface{}) (int, error) {
	body := map[string]interface{}{
		"vals_list": []interface{}{values},
	}

	result, err := c.Execute(ctx, model, "create", body)
	if err != nil {
		return 0, err
	}

	if list, ok := result.([]interface{}); ok && len(list) > 0 {
		if id, ok := toInt(list[0]); ok {
			return id, nil
		}
	}

	if id, ok := toInt(result); ok {
		return id, nil
	}

	return 0, fmt.Errorf("%w: create returned %T", errUnexpectedResultType, result)
}

// Read fetches records by id. A nil fields list reads all fields.
func (c *Client) Read(ctx context.Context, model string, ids []int, fields []string) ([]map[string]interface{}, error) {
	body := map[string]interface{}{"ids": ids}
	if len(fields) > 0 {
		body["fields"] = fields
	}

	result, err := c.Execute(ctx, model, "read", body)
	if err != nil {
		return nil, err
	}

	return toRecordList(result, "read")
}

// Write updates the given records with the field values.
func (c *Client) Write(ctx context.Context, model string, ids []int, values map[string]interface{}) error {
	body := map[string]interface{}{
		"ids":    ids,
		"values": values,
	}

	result, err := c.Execute(ctx, model, "write", body)
	if err != nil {
		return err
	}

	if ok, isBool := result.(bool); !isBool || !ok {
		return fmt.Errorf("%w: write", errOperationFailed)
	}

	return nil
}

// Unlink deletes the given records.
func (c *Client) Unlink(ctx context.Context, model string, ids []int) error {
	body := map[string]interface{}{"ids": ids}

	result, err := c.Execute(ctx, model, "unlink", body)
	if err != nil {
		return err
	}

	if ok, isBool := result.(bool); !isBool || !ok {
		return fmt.Errorf("%w: unlink", errOperationFailed)
	}

	return nil
}

// Search returns the ids of records matching domain. A limit or offset of
// zero is omitted from the request.
func (c *Client) Search(ctx context.Context, model string, domain Domain, limit, offset int) ([]int, error) {
	body := map[string]interface{}{"domain": domainOrEmpty(domain)}
	if limit > 0 {
		body["limit"] = limit
	}

	if offset > 0 {
		body["offset"] = offset
	}

	result, err := c.Execute(ctx, model, "search", body)
	if err != nil {
		return nil, err
	}

	list, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: search returned %T", errUnexpectedResultType, result)
	}

	ids := make([]int, 0, len(list))

	for _, item := range list {
		id, ok := toInt(item)
		if !ok {
			return nil, fmt.Errorf("%w: search id %T", errUnexpectedResultType, item)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// SearchRead searches and reads matching records in one round-trip.
func (c *Client) SearchRead(ctx context.Context, model string, domain Domain, fields []string, limit, offset int) ([]map[string]interface{}, error) {
	body := map[string]interface{}{"domain": domainOrEmpty(domain)}
	if len(fields) > 0 {
		body["fields"] = fields
	}

	if limit > 0 {
		body["limit"] = limit
	}

	if offset > 0 {
		body["offset"] = offset
	}

	result, err := c.Execute(ctx, model, "search_read", body)
	if err != nil {
		return nil, err
	}

	return toRecordList(result, "search_read")
}

// SearchCount counts the records matching domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain Domain) (int, error) {
	body := map[string]interface{}{"domain": domainOrEmpty(domain)}

	result, err := c.Execute(ctx, model, "search_count", body)
	if err != nil {
		return 0, err
	}

	count, ok := toInt(result)
	if !ok {
		return 0, fmt.Errorf("%w: search_count returned %T", errUnexpectedResultType, result)
	}

	return count, nil
}

// FieldsGet returns field definitions for a model.
func (c *Client) FieldsGet(ctx context.Context, model string, fields []string) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"attributes": []string{"string", "type", "required", "readonly", "selection"},
	}
	if len(fields) > 0 {
		body["allfields"] = fields
	}

	result, err := c.Execute(ctx, model, "fields_get", body)
	if err != nil {
		return nil, err
	}

	defs, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: fields_get returned %T", errUnexpectedResultType, result)
	}

	return defs, nil
}

// CallMethod invokes an arbitrary named method on a model with optional
// record ids and keyword arguments. The result shape depends entirely on
// the method.
func (c *Client) CallMethod(ctx context.Context, model, method string, ids []int, args map[string]interface{}) (interface{}, error) {
	body := make(map[string]interface{}, len(args)+1)
	for k, v := range args {
		body[k] = v
	}

	if len(ids) > 0 {
		body["ids"] = ids
	}

	return c.Execute(ctx, model, method, body)
}

func domainOrEmpty(d Domain) Domain {
	if d == nil {
		return Domain{}
	}

	return d
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func toRecordList(result interface{}, op string) ([]map[string]interface{}, error) {
	list, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", errUnexpectedResultType, op, result)
	}

	records := make([]map[string]interface{}, 0, len(list))

	for _, item := range list {
		record, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s record %T", errUnexpectedResultType, op, item)
		}

		records = append(records, record)
	}

	return records, nil
}
