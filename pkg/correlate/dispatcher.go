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

// Package correlate defines the boundary to the downstream correlation
// consumer: a delivery carries an idempotency key plus a variables
// payload and resolves to exactly one of three outcomes.
package correlate

//go:generate mockgen -destination=mock_dispatcher.go -package=correlate github.com/carverauto/odoosync/pkg/correlate Dispatcher

import (
	"context"
)

// Dispatcher submits one delivery to the consumer. The messageID is the
// deterministic idempotency key the consumer's broker uses to reject
// replays.
type Dispatcher interface {
	Dispatch(ctx context.Context, messageID string, variables map[string]interface{}) Outcome
}

// Outcome is the closed set of delivery results. The sealed marker
// method keeps the set exhaustive at compile time: a type switch over
// Success, Failure and Ignore covers every value.
type Outcome interface {
	outcome()
}

// Success means the consumer accepted the delivery.
type Success struct{}

// Failure means delivery failed. Recoverable failures are worth another
// attempt on a later poll cycle; either way the record is not marked as
// delivered.
type Failure struct {
	Recoverable bool
	Message     string
}

// Ignore means no consumer was waiting for the event. Not an error; the
// record is treated as delivered.
type Ignore struct {
	Message string
}

func (Success) outcome() {}
func (Failure) outcome() {}
func (Ignore) outcome()  {}
