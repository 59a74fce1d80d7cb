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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/odoosync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Auth{
		Endpoint: server.URL,
		Database: "testdb",
		APIKey:   "secret",
	}, logger.NewTestLogger(), WithRetryPolicy(3, time.Millisecond))

	return client, server
}

func TestClientExecuteSendsTransportHeaders(t *testing.T) {
	var gotAuth, gotDB, gotContentType string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotDB = r.Header.Get("X-Odoo-Database")
		gotContentType = r.Header.Get("Content-Type")

		assert.Equal(t, "/json/2/res.partner/search_read", r.URL.Path)

		_ = json.NewEncoder(w).Encode([]interface{}{})
	}))

	_, err := client.Execute(context.Background(), "res.partner", "search_read", nil)
	require.NoError(t, err)

	assert.Equal(t, "bearer secret", gotAuth)
	assert.Equal(t, "testdb", gotDB)
	assert.Equal(t, "application/json; charset=utf-8", gotContentType)
}

func TestClientExecuteAddsDefaultContext(t *testing.T) {
	var body map[string]interface{}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(true)
	}))

	_, err := client.Execute(context.Background(), "res.partner", "write", map[string]interface{}{
		"ids": []int{1},
	})
	require.NoError(t, err)

	require.Contains(t, body, "context")
	assert.Equal(t, map[string]interface{}{"lang": "en_US"}, body["context"])
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.Execute(context.Background(), "res.partner", "search_read", nil)
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTransient, apiErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	// First attempt plus exactly three retries.
	assert.Equal(t, int32(4), calls.Load())
}

func TestClientDoesNotRetryValidationFailures(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"name":    "ValidationError",
			"message": "missing required field",
		})
	}))

	_, err := client.Execute(context.Background(), "res.partner", "create", nil)
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, "ValidationError", apiErr.Name)
	assert.Equal(t, "missing required field", apiErr.Message)

	assert.Equal(t, int32(1), calls.Load())
}

func TestClientRetriesNetworkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from now on

	client := NewClient(Auth{
		Endpoint: server.URL,
		Database: "testdb",
		APIKey:   "secret",
	}, logger.NewTestLogger(), WithRetryPolicy(2, time.Millisecond))

	_, err := client.Execute(context.Background(), "res.partner", "search_read", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
}

func TestClientRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		_ = json.NewEncoder(w).Encode([]interface{}{map[string]interface{}{"id": 1}})
	}))

	result, err := client.Execute(context.Background(), "res.partner", "search_read", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	list, ok := result.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestClientTestConnection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/2/res.users/fields_get", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"name": map[string]interface{}{"type": "char"}})
	}))

	assert.True(t, client.TestConnection(context.Background()))
}

func TestClientTestConnectionFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	assert.False(t, client.TestConnection(context.Background()))
}

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindPermission},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusTooManyRequests, KindTransient},
		{http.StatusBadGateway, KindTransient},
		{http.StatusServiceUnavailable, KindTransient},
		{http.StatusGatewayTimeout, KindTransient},
		{http.StatusInternalServerError, KindUnknown},
		{http.StatusTeapot, KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForStatus(tt.status), "status %d", tt.status)
	}
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, newStatusError(503, "x", "y", "").Retryable())
	assert.False(t, newStatusError(401, "x", "y", "").Retryable())
	assert.False(t, newStatusError(500, "x", "y", "").Retryable())
}
