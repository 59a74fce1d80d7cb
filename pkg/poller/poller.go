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

// Package poller drives the change-detection cycle for one monitored
// Odoo model: poll on a fixed interval, classify fetched records,
// deduplicate, and dispatch each qualifying change to the correlation
// consumer under a deterministic message identity.
package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/odoosync/pkg/correlate"
	"github.com/carverauto/odoosync/pkg/logger"
	"github.com/carverauto/odoosync/pkg/models"
	"github.com/carverauto/odoosync/pkg/odoo"
	"github.com/google/uuid"
)

const stopGracePeriod = 5 * time.Second

// PollState is the per-instance poll window and dedup state. It is
// mutated only by the owning poller's tick loop (single writer) and is
// discarded on deactivation.
type PollState struct {
	lastPoll time.Time
	seen     *dedupCache
}

func newPollState(now time.Time) *PollState {
	return &PollState{
		lastPoll: now,
		seen:     newDedupCache(dedupHighWater, dedupRetain),
	}
}

// Poller polls one Odoo model for changes. Create with New, then drive
// through Start/Stop.
type Poller struct {
	config     models.SourceConfig
	client     Fetcher
	dispatcher correlate.Dispatcher
	clock      Clock
	logger     logger.Logger

	// Parsed once at construction; malformed input degrades to "no
	// extra filter" / "no extra fields" rather than failing polls.
	extraDomain  odoo.Domain
	customFields []string

	done        chan struct{}
	loopDone    chan struct{}
	closeOnce   sync.Once
	started     atomic.Bool
	tickCtx     context.Context
	cancelTicks context.CancelFunc
}

// New creates a poller instance for the given source. A nil clock
// defaults to the real clock.
func New(config *models.SourceConfig, client Fetcher, dispatcher correlate.Dispatcher, clock Clock, log logger.Logger) *Poller {
	if clock == nil {
		clock = realClock{}
	}

	// Tick work runs under its own cancelable context so Stop can
	// force-cancel an in-flight fetch after the grace period without
	// tying tick lifetime to the Start context.
	tickCtx, cancelTicks := context.WithCancel(context.Background())

	p := &Poller{
		config:      *config,
		client:      client,
		dispatcher:  dispatcher,
		clock:       clock,
		logger:      log.WithFields(map[string]interface{}{"model": config.Model}),
		done:        make(chan struct{}),
		loopDone:    make(chan struct{}),
		tickCtx:     tickCtx,
		cancelTicks: cancelTicks,
	}

	extra, err := odoo.ParseDomain(config.FilterDomain)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Malformed filter domain, polling without extra filter")

		extra = odoo.Domain{}
	}

	p.extraDomain = extra

	custom, err := odoo.ParseFields(config.Fields)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Malformed fields list, polling with base fields only")

		custom = nil
	}

	p.customFields = custom

	return p
}

// Start validates connectivity with one synchronous probe, then runs the
// poll loop until the context is canceled or Stop is called. It blocks;
// run it on its own goroutine (lifecycle.Run does).
func (p *Poller) Start(ctx context.Context) error {
	if !p.client.TestConnection(ctx) {
		return fmt.Errorf("%w at %s", ErrConnectionProbe, p.config.Endpoint)
	}

	p.started.Store(true)

	defer close(p.loopDone)

	interval := p.config.EffectivePollInterval()

	ticker := p.clock.Ticker(interval)
	defer ticker.Stop()

	defer p.cancelTicks()

	state := newPollState(p.clock.Now())

	p.logger.Info().
		Dur("interval", interval).
		Int("batch_size", p.config.EffectiveBatchSize()).
		Msg("Odoo polling activated")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-ticker.Chan():
			// Inline: a tick runs to completion before the next
			// one fires, so ticks for one instance never overlap.
			p.tick(p.tickCtx, state)
		}
	}
}

// Stop deactivates the poller: it cancels any scheduled-but-not-started
// tick, waits up to a grace period for an in-flight tick, force-cancels
// past it, and releases the client's connection resources.
func (p *Poller) Stop(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.done) })

	if !p.started.Load() {
		p.client.Close()
		return nil
	}

	select {
	case <-p.loopDone:
	case <-time.After(stopGracePeriod):
		p.logger.Warn().Msg("Grace period elapsed, canceling in-flight tick")

		p.cancelTicks()

		select {
		case <-p.loopDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.client.Close()
	p.logger.Info().Msg("Odoo polling deactivated")

	return nil
}

// tick runs one poll-fetch-classify-dispatch cycle. A fetch failure
// degrades the whole tick: nothing is processed and the window is left
// where it was, so the next tick re-covers the same span.
func (p *Poller) tick(ctx context.Context, state *PollState) {
	start := p.clock.Now()
	log := p.logger.WithFields(map[string]interface{}{"cycle_id": uuid.New().String()})

	trackingField := p.config.EffectiveTriggerField()
	domain := buildDomain(state.lastPoll, trackingField, p.extraDomain)
	fields := buildFields(trackingField, p.customFields)

	records, err := p.client.SearchRead(ctx, p.config.Model, domain, fields, p.config.EffectiveBatchSize(), 0)
	if err != nil {
		log.Error().Err(err).Msg("Poll cycle failed, window not advanced")
		return
	}

	if len(records) == 0 {
		log.Debug().Msg("No new records found")

		state.lastPoll = start

		return
	}

	log.Info().Int("count", len(records)).Msg("Found records to process")

	for _, record := range records {
		select {
		case <-p.done:
			return
		default:
		}

		p.processRecord(ctx, log, state, record)
	}

	state.lastPoll = start

	state.seen.evict()
}

// processRecord takes one fetched record through classification, dedup,
// identity derivation and dispatch. Failures here are isolated: the rest
// of the batch continues.
func (p *Poller) processRecord(ctx context.Context, log logger.Logger, state *PollState, record map[string]interface{}) {
	id, ok := models.RecordID(record)
	if !ok {
		log.Warn().Msg("Dropping record without identifier")
		return
	}

	if state.seen.seen(id) {
		return
	}

	kind, ok := classify(record, p.config.TriggerOnCreate(), p.config.TriggerOnModify())
	if !ok {
		return
	}

	event := models.NewChangeEvent(p.config.Model, record, kind, p.config.EffectiveTriggerField())
	messageID := messageIdentity(event.Model, id, kind)

	outcome := p.dispatcher.Dispatch(ctx, messageID, event.Variables())

	switch o := outcome.(type) {
	case correlate.Success:
		log.Info().
			Int("record_id", id).
			Str("event_type", kind.String()).
			Str("message_id", messageID).
			Msg("Event correlated")

		state.seen.mark(id)
	case correlate.Failure:
		// Not marked seen: the record stays inside the unadvanced
		// window and is re-attempted next cycle. The broker's dedup
		// on the message identity absorbs the duplicate attempt.
		entry := log.Error()
		if o.Recoverable {
			entry = log.Warn()
		}

		entry.Int("record_id", id).Str("reason", o.Message).Msg("Correlation failed")
	case correlate.Ignore:
		log.Debug().
			Int("record_id", id).
			Str("reason", o.Message).
			Msg("No waiting consumer for event")

		state.seen.mark(id)
	}
}
