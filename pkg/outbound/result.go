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

package outbound

// Result is the structured outcome of one operation. Exactly one of the
// payload fields is populated, matching the operation kind.
type Result struct {
	Operation string                   `json:"operation"`
	Model     string                   `json:"model"`
	Success   bool                     `json:"success"`
	CreatedID int                      `json:"createdId,omitempty"`
	Affected  []int                    `json:"affectedIds,omitempty"`
	Records   []map[string]interface{} `json:"records,omitempty"`
	SearchIDs []int                    `json:"searchIds,omitempty"`
	Count     int                      `json:"count,omitempty"`
	Method    interface{}              `json:"methodResult,omitempty"`

	Error      string `json:"error,omitempty"`
	ErrorCode  string `json:"errorCode,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

func createdResult(model string, id int) *Result {
	return &Result{Operation: OpCreate, Model: model, Success: true, CreatedID: id}
}

func readResult(model string, records []map[string]interface{}) *Result {
	return &Result{Operation: OpRead, Model: model, Success: true, Records: records}
}

func updatedResult(model string, ids []int) *Result {
	return &Result{Operation: OpUpdate, Model: model, Success: true, Affected: ids}
}

func deletedResult(model string, ids []int) *Result {
	return &Result{Operation: OpDelete, Model: model, Success: true, Affected: ids}
}

func searchedResult(model string, ids []int) *Result {
	return &Result{Operation: OpSearch, Model: model, Success: true, SearchIDs: ids}
}

func searchReadResult(model string, records []map[string]interface{}) *Result {
	return &Result{Operation: OpSearchRead, Model: model, Success: true, Records: records}
}

func countedResult(model string, count int) *Result {
	return &Result{Operation: OpSearchCount, Model: model, Success: true, Count: count}
}

func methodResult(model, method string, result interface{}) *Result {
	return &Result{Operation: OpCallMethod + ":" + method, Model: model, Success: true, Method: result}
}

func errorResult(operation, model string, err error) *Result {
	r := &Result{
		Operation: operation,
		Model:     model,
		Error:     err.Error(),
		ErrorCode: ErrorCode(err),
	}

	if apiErr, ok := asAPIError(err); ok {
		r.StatusCode = apiErr.StatusCode
	}

	return r
}
