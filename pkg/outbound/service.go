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
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/odoosync/pkg/logger"
)

const (
	defaultRequestSubject = "odoo.requests"
	requestQueueGroup     = "odoosync-outbound"
)

var errMalformedRequest = errors.New("malformed request payload")

// Service answers operation requests over NATS request-reply. Each
// message carries one JSON Request; the reply is the JSON Result,
// success or error alike, so callers always get a decodable answer.
type Service struct {
	nc       *nats.Conn
	subject  string
	executor *Executor
	logger   logger.Logger

	sub       *nats.Subscription
	handleCtx context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewService creates a responder on the given subject. An empty subject
// uses the default.
func NewService(nc *nats.Conn, subject string, executor *Executor, log logger.Logger) *Service {
	if subject == "" {
		subject = defaultRequestSubject
	}

	handleCtx, cancel := context.WithCancel(context.Background())

	return &Service{
		nc:        nc,
		subject:   subject,
		executor:  executor,
		logger:    log.WithFields(map[string]interface{}{"subject": subject}),
		handleCtx: handleCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start subscribes and blocks until the context is canceled or Stop is
// called. Instances share a queue group, so requests load-balance across
// replicas.
func (s *Service) Start(ctx context.Context) error {
	sub, err := s.nc.QueueSubscribe(s.subject, requestQueueGroup, s.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe for operation requests: %w", err)
	}

	s.sub = sub

	s.logger.Info().Msg("Outbound operation responder started")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	}
}

// Stop drains the subscription so in-flight requests finish, then cuts
// off handler contexts.
func (s *Service) Stop(_ context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	var err error
	if s.sub != nil {
		err = s.sub.Drain()
	}

	s.cancel()

	return err
}

func (s *Service) handle(msg *nats.Msg) {
	var req Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn().Err(err).Msg("Dropping undecodable operation request")

		s.respond(msg, &Result{
			Success:   false,
			Error:     fmt.Sprintf("%v: %v", errMalformedRequest, err),
			ErrorCode: CodeValidation,
		})

		return
	}

	s.respond(msg, s.executor.Execute(s.handleCtx, &req))
}

func (s *Service) respond(msg *nats.Msg, result *Result) {
	if msg.Reply == "" {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode operation result")
		return
	}

	if err := msg.Respond(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish operation result")
	}
}
