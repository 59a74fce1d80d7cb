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

package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/odoosync/pkg/correlate"
	"github.com/carverauto/odoosync/pkg/logger"
	"github.com/carverauto/odoosync/pkg/models"
)

func testSource() *models.SourceConfig {
	return &models.SourceConfig{
		Endpoint: "https://odoo.example.com",
		Database: "prod",
		APIKey:   "test-key",
		Model:    "sale.order",
	}
}

func saleOrderRecord(id int, createDate, writeDate string) map[string]interface{} {
	return map[string]interface{}{
		"id":          float64(id),
		"create_date": createDate,
		"write_date":  writeDate,
	}
}

func newTestPoller(t *testing.T, ctrl *gomock.Controller) (*Poller, *MockFetcher, *correlate.MockDispatcher, *MockClock) {
	t.Helper()

	fetcher := NewMockFetcher(ctrl)
	dispatcher := correlate.NewMockDispatcher(ctrl)
	clock := NewMockClock(ctrl)

	p := New(testSource(), fetcher, dispatcher, clock, logger.NewTestLogger())

	return p, fetcher, dispatcher, clock
}

func TestTickDispatchesCreatedAndAdvancesWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, dispatcher, clock := newTestPoller(t, ctrl)

	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tickStart := windowStart.Add(30 * time.Second)

	state := newPollState(windowStart)

	clock.EXPECT().Now().Return(tickStart)

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{
			saleOrderRecord(7, "2024-01-01 00:00:00", "2024-01-01 00:00:00"),
		}, nil)

	dispatcher.EXPECT().
		Dispatch(gomock.Any(), "odoo-sale.order-7-create", gomock.Any()).
		Return(correlate.Success{})

	p.tick(context.Background(), state)

	assert.Equal(t, tickStart, state.lastPoll)
	assert.True(t, state.seen.seen(7))
}

func TestTickDedupSuppressesSecondDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, dispatcher, clock := newTestPoller(t, ctrl)

	state := newPollState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	record := saleOrderRecord(7, "2024-01-01 00:00:00", "2024-01-01 00:00:00")

	clock.EXPECT().Now().Return(time.Now().UTC()).Times(2)

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{record}, nil).
		Times(2)

	// The record appears in both fetches but is dispatched once.
	dispatcher.EXPECT().
		Dispatch(gomock.Any(), "odoo-sale.order-7-create", gomock.Any()).
		Return(correlate.Success{}).
		Times(1)

	p.tick(context.Background(), state)
	p.tick(context.Background(), state)
}

func TestTickFetchFailureLeavesWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, _, clock := newTestPoller(t, ctrl)

	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := newPollState(windowStart)

	clock.EXPECT().Now().Return(windowStart.Add(time.Minute))

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return(nil, errors.New("upstream unavailable"))

	p.tick(context.Background(), state)

	assert.Equal(t, windowStart, state.lastPoll)
}

func TestTickEmptyResultAdvancesWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, _, clock := newTestPoller(t, ctrl)

	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tickStart := windowStart.Add(time.Minute)
	state := newPollState(windowStart)

	clock.EXPECT().Now().Return(tickStart)

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{}, nil)

	p.tick(context.Background(), state)

	assert.Equal(t, tickStart, state.lastPoll)
}

func TestTickFailureOutcomeRetriesNextCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, dispatcher, clock := newTestPoller(t, ctrl)

	state := newPollState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	record := saleOrderRecord(9, "2024-01-01 00:00:00", "2024-01-02 08:30:00")

	clock.EXPECT().Now().Return(time.Now().UTC()).Times(2)

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{record}, nil).
		Times(2)

	// Not marked seen after a failed dispatch, so the next cycle
	// attempts the same record again under the same identity.
	dispatcher.EXPECT().
		Dispatch(gomock.Any(), "odoo-sale.order-9-write", gomock.Any()).
		Return(correlate.Failure{Recoverable: true, Message: "broker unreachable"}).
		Times(2)

	p.tick(context.Background(), state)
	assert.False(t, state.seen.seen(9))

	p.tick(context.Background(), state)
}

func TestTickIgnoreOutcomeMarksSeen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, dispatcher, clock := newTestPoller(t, ctrl)

	state := newPollState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	clock.EXPECT().Now().Return(time.Now().UTC())

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{
			saleOrderRecord(12, "2024-01-01 00:00:00", "2024-01-02 08:30:00"),
		}, nil)

	dispatcher.EXPECT().
		Dispatch(gomock.Any(), "odoo-sale.order-12-write", gomock.Any()).
		Return(correlate.Ignore{Message: "no waiting subscriber"})

	p.tick(context.Background(), state)

	assert.True(t, state.seen.seen(12))
}

func TestTickDropsRecordWithoutIdentifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, _, clock := newTestPoller(t, ctrl)

	state := newPollState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	clock.EXPECT().Now().Return(time.Now().UTC())

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{
			{"create_date": "2024-01-01 00:00:00", "write_date": "2024-01-01 00:00:00"},
		}, nil)

	// No Dispatch expectation: a record without an id never reaches the
	// dispatcher.
	p.tick(context.Background(), state)
}

func TestTickCreateOnlyTriggerSkipsModifications(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := NewMockFetcher(ctrl)
	dispatcher := correlate.NewMockDispatcher(ctrl)
	clock := NewMockClock(ctrl)

	source := testSource()
	source.TriggerCondition = "NEW"

	p := New(source, fetcher, dispatcher, clock, logger.NewTestLogger())
	state := newPollState(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	clock.EXPECT().Now().Return(time.Now().UTC())

	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		Return([]map[string]interface{}{
			saleOrderRecord(3, "2024-01-01 00:00:00", "2024-01-02 08:30:00"),
			saleOrderRecord(4, "2024-01-02 09:00:00", "2024-01-02 09:00:00"),
		}, nil)

	dispatcher.EXPECT().
		Dispatch(gomock.Any(), "odoo-sale.order-4-create", gomock.Any()).
		Return(correlate.Success{})

	p.tick(context.Background(), state)
}

func TestStartProbeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, _, _ := newTestPoller(t, ctrl)

	fetcher.EXPECT().TestConnection(gomock.Any()).Return(false)

	err := p.Start(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionProbe)
}

func TestStartStopLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, _, clock := newTestPoller(t, ctrl)

	ticks := make(chan time.Time)
	ticker := NewMockTicker(ctrl)
	ticker.EXPECT().Chan().Return((<-chan time.Time)(ticks)).AnyTimes()
	ticker.EXPECT().Stop()

	clock.EXPECT().Now().Return(time.Now().UTC()).AnyTimes()
	clock.EXPECT().Ticker(gomock.Any()).Return(ticker)

	fetcher.EXPECT().TestConnection(gomock.Any()).Return(true)

	ticked := make(chan struct{})
	fetcher.EXPECT().
		SearchRead(gomock.Any(), "sale.order", gomock.Any(), gomock.Any(), 50, 0).
		DoAndReturn(func(context.Context, string, interface{}, interface{}, int, int) ([]map[string]interface{}, error) {
			close(ticked)
			return nil, nil
		})

	fetcher.EXPECT().Close()

	startErr := make(chan error, 1)
	go func() {
		startErr <- p.Start(context.Background())
	}()

	ticks <- time.Now()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("tick never ran")
	}

	require.NoError(t, p.Stop(context.Background()))

	select {
	case err := <-startErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poll loop did not exit")
	}
}

func TestStopBeforeStartReleasesClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, fetcher, _, _ := newTestPoller(t, ctrl)

	fetcher.EXPECT().Close()

	require.NoError(t, p.Stop(context.Background()))
}
