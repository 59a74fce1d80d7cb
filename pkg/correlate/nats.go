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

package correlate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/carverauto/odoosync/pkg/logger"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const defaultSubjectPrefix = "odoo.events"

// NATSDispatcher delivers events to a NATS JetStream stream. The
// idempotency key is attached as the Nats-Msg-Id header, so the stream's
// duplicate window provides the authoritative broker-level dedup.
type NATSDispatcher struct {
	js            jetstream.JetStream
	subjectPrefix string
	logger        logger.Logger
}

// NewNATSDispatcher wraps an established NATS connection. An empty
// subjectPrefix uses the default.
func NewNATSDispatcher(nc *nats.Conn, subjectPrefix string, log logger.Logger) (*NATSDispatcher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}

	if subjectPrefix == "" {
		subjectPrefix = defaultSubjectPrefix
	}

	return &NATSDispatcher{
		js:            js,
		subjectPrefix: subjectPrefix,
		logger:        log,
	}, nil
}

// Dispatch publishes the variables payload with the idempotency key. A
// duplicate acknowledgment still counts as Success: the broker already
// holds the event.
func (d *NATSDispatcher) Dispatch(ctx context.Context, messageID string, variables map[string]interface{}) Outcome {
	payload, err := json.Marshal(variables)
	if err != nil {
		return Failure{Recoverable: false, Message: "failed to encode variables: " + err.Error()}
	}

	subject := d.subject(variables)

	ack, err := d.js.Publish(ctx, subject, payload, jetstream.WithMsgID(messageID))
	if err != nil {
		if errors.Is(err, jetstream.ErrNoStreamResponse) {
			return Ignore{Message: "no stream bound to subject " + subject}
		}

		return Failure{Recoverable: true, Message: err.Error()}
	}

	if ack.Duplicate {
		d.logger.Debug().
			Str("message_id", messageID).
			Str("subject", subject).
			Msg("Broker rejected duplicate delivery")
	}

	return Success{}
}

// subject derives the publish subject from the event's source model.
// Model names use dots (sale.order), which would split NATS subject
// tokens, so they are flattened with underscores.
func (d *NATSDispatcher) subject(variables map[string]interface{}) string {
	model, _ := variables["odooModel"].(string)
	if model == "" {
		model = "unknown"
	}

	return d.subjectPrefix + "." + strings.ReplaceAll(model, ".", "_")
}
