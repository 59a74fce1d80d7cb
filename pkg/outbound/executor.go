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

import (
	"context"
	"errors"

	"github.com/carverauto/odoosync/pkg/logger"
	"github.com/carverauto/odoosync/pkg/odoo"
)

// External failure codes a calling workflow can branch on.
const (
	CodeAuthentication = "ODOO_AUTH_ERROR"
	CodePermission     = "ODOO_PERMISSION_ERROR"
	CodeNotFound       = "ODOO_NOT_FOUND"
	CodeValidation     = "ODOO_VALIDATION_ERROR"
	CodeConnection     = "ODOO_CONNECTION_ERROR"
	CodeUnknown        = "ODOO_ERROR"
)

// API is the client surface the executor drives. *odoo.Client
// satisfies it.
type API interface {
	Create(ctx context.Context, model string, values map[string]interface{}) (int, error)
	Read(ctx context.Context, model string, ids []int, fields []string) ([]map[string]interface{}, error)
	Write(ctx context.Context, model string, ids []int, values map[string]interface{}) error
	Unlink(ctx context.Context, model string, ids []int) error
	Search(ctx context.Context, model string, domain odoo.Domain, limit, offset int) ([]int, error)
	SearchRead(ctx context.Context, model string, domain odoo.Domain, fields []string, limit, offset int) ([]map[string]interface{}, error)
	SearchCount(ctx context.Context, model string, domain odoo.Domain) (int, error)
	CallMethod(ctx context.Context, model, method string, ids []int, args map[string]interface{}) (interface{}, error)
	Close()
}

// Executor runs outbound requests. A fresh client is acquired per
// request and released on every exit path.
type Executor struct {
	logger logger.Logger

	// newClient is replaceable in tests.
	newClient func(auth odoo.Auth) API
}

// NewExecutor creates an executor that dials Odoo with the request's
// credentials.
func NewExecutor(log logger.Logger) *Executor {
	e := &Executor{logger: log}
	e.newClient = func(auth odoo.Auth) API {
		return odoo.NewClient(auth, log)
	}

	return e
}

// Execute validates and runs one operation. Request-shape problems
// return a validation-coded result without touching the network; API
// failures come back as an error result carrying the external code.
func (e *Executor) Execute(ctx context.Context, req *Request) *Result {
	log := e.logger.WithFields(map[string]interface{}{
		"operation": req.Operation,
		"model":     req.Model,
	})

	log.Info().Msg("Executing Odoo operation")

	if err := req.Validate(); err != nil {
		result := errorResult(req.Operation, req.Model, err)
		result.ErrorCode = CodeValidation

		return result
	}

	client := e.newClient(req.Auth)
	defer client.Close()

	result, err := e.run(ctx, client, req)
	if err != nil {
		log.Error().Err(err).Msg("Odoo operation failed")
		return errorResult(req.Operation, req.Model, err)
	}

	return result
}

func (e *Executor) run(ctx context.Context, client API, req *Request) (*Result, error) {
	model := req.Model
	domain := odoo.Domain(req.Domain)

	switch req.Operation {
	case OpCreate:
		id, err := client.Create(ctx, model, req.Values)
		if err != nil {
			return nil, err
		}

		return createdResult(model, id), nil

	case OpRead:
		records, err := client.Read(ctx, model, req.EffectiveRecordIDs(), req.Fields)
		if err != nil {
			return nil, err
		}

		return readResult(model, records), nil

	case OpUpdate:
		ids := req.EffectiveRecordIDs()
		if err := client.Write(ctx, model, ids, req.Values); err != nil {
			return nil, err
		}

		return updatedResult(model, ids), nil

	case OpDelete:
		ids := req.EffectiveRecordIDs()
		if err := client.Unlink(ctx, model, ids); err != nil {
			return nil, err
		}

		return deletedResult(model, ids), nil

	case OpSearch:
		ids, err := client.Search(ctx, model, domain, req.Limit, req.Offset)
		if err != nil {
			return nil, err
		}

		return searchedResult(model, ids), nil

	case OpSearchRead:
		records, err := client.SearchRead(ctx, model, domain, req.Fields, req.Limit, req.Offset)
		if err != nil {
			return nil, err
		}

		return searchReadResult(model, records), nil

	case OpSearchCount:
		count, err := client.SearchCount(ctx, model, domain)
		if err != nil {
			return nil, err
		}

		return countedResult(model, count), nil

	case OpCallMethod:
		raw, err := client.CallMethod(ctx, model, req.MethodName, req.EffectiveRecordIDs(), req.MethodArgs)
		if err != nil {
			return nil, err
		}

		return methodResult(model, req.MethodName, raw), nil

	default:
		return nil, errUnknownOperation
	}
}

// ErrorCode maps a failure to the external code for workflow branching.
func ErrorCode(err error) string {
	if errors.Is(err, odoo.ErrConnection) {
		return CodeConnection
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return CodeUnknown
	}

	switch apiErr.Kind {
	case odoo.KindAuthentication:
		return CodeAuthentication
	case odoo.KindPermission:
		return CodePermission
	case odoo.KindNotFound:
		return CodeNotFound
	case odoo.KindValidation:
		return CodeValidation
	case odoo.KindTransient:
		return CodeConnection
	case odoo.KindUnknown:
		return CodeUnknown
	default:
		return CodeUnknown
	}
}

func asAPIError(err error) (*odoo.Error, bool) {
	return odoo.AsError(err)
}
