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
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConnection marks network-level failures (connection refused,
	// timeout) that never produced an HTTP status.
	ErrConnection = errors.New("odoo connection error")

	errUnexpectedResultType = errors.New("unexpected result type")
	errOperationFailed      = errors.New("operation returned false")
)

// ErrorKind classifies an API failure by its HTTP status semantics.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthentication
	KindPermission
	KindNotFound
	KindValidation
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// KindForStatus maps an HTTP status code to its error kind. The mapping
// is total: every status resolves to exactly one kind.
func KindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindTransient
	default:
		return KindUnknown
	}
}

// Error is a structured failure returned by the Odoo API.
type Error struct {
	StatusCode int
	Kind       ErrorKind
	Name       string
	Message    string
	Detail     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Name, e.Message)
}

// Retryable reports whether the failure is worth retrying locally.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransient
}

func newStatusError(statusCode int, name, message, detail string) *Error {
	return &Error{
		StatusCode: statusCode,
		Kind:       KindForStatus(statusCode),
		Name:       name,
		Message:    message,
		Detail:     detail,
	}
}

// AsError unwraps err into a structured *Error when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}
