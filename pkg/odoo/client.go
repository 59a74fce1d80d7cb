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

// Package odoo implements a resilient client for the Odoo External
// JSON-2 API: POST /json/2/{model}/{method} with bearer authentication
// and a database selector header.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carverauto/odoosync/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultMaxRetries     = 3
	defaultRetryDelay     = time.Second
	defaultUserAgent      = "odoosync/1.0"
)

// Auth carries the credentials for one Odoo server and database.
type Auth struct {
	Endpoint string `json:"endpoint"`
	Database string `json:"database"`
	APIKey   string `json:"api_key"`
}

// Client issues logical operations against one Odoo endpoint. It holds no
// mutable cross-call state beyond the pooled HTTP transport, which is
// released by Close.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	database       string
	apiKey         string
	userAgent      string
	requestTimeout time.Duration
	maxRetries     int
	retryDelay     time.Duration
	limiter        *rate.Limiter
	logger         logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryPolicy overrides the retry count and the fixed delay between
// attempts.
func WithRetryPolicy(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithRequestTimeout bounds each network round-trip.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

// WithRateLimit throttles outgoing requests to protect Odoo API quotas.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header attached to every call.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the given server credentials.
func NewClient(auth Auth, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{},
		baseURL:        strings.TrimSuffix(auth.Endpoint, "/") + "/json/2",
		database:       auth.Database,
		apiKey:         auth.APIKey,
		userAgent:      defaultUserAgent,
		requestTimeout: defaultRequestTimeout,
		maxRetries:     defaultMaxRetries,
		retryDelay:     defaultRetryDelay,
		logger:         log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Execute runs one logical API operation on model. Transient failures
// (429/5xx and network-level errors) are retried up to the configured
// bound with a fixed delay; every other failure surfaces immediately.
func (c *Client) Execute(ctx context.Context, model, method string, body map[string]interface{}) (interface{}, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, model, method)

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Str("model", model).
				Str("method", method).
				Msg("Retrying after transient failure")

			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}

		result, err := c.doRequest(ctx, url, payload)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, url string, payload []byte) (interface{}, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "bearer "+c.apiKey)
	req.Header.Set("X-Odoo-Database", c.database)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrConnection, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, parseErrorResponse(resp.StatusCode, respBody)
	}

	var result interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result, nil
}

// Close releases the pooled transport connections. Safe to call more
// than once.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
	c.logger.Debug().Msg("Odoo client closed")
}

// TestConnection probes the server with an authenticated metadata call.
func (c *Client) TestConnection(ctx context.Context) bool {
	if _, err := c.FieldsGet(ctx, "res.users", []string{"name"}); err != nil {
		c.logger.Error().Err(err).Msg("Connection test failed")
		return false
	}

	return true
}

func encodeBody(body map[string]interface{}) ([]byte, error) {
	request := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		request[k] = v
	}

	if _, ok := request["context"]; !ok {
		request["context"] = map[string]interface{}{"lang": "en_US"}
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	return payload, nil
}

// parseErrorResponse extracts the structured Odoo error body, falling
// back to the raw text when the body is not the expected JSON shape.
func parseErrorResponse(statusCode int, body []byte) *Error {
	var parsed struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Debug   string `json:"debug"`
	}

	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		name := parsed.Name
		if name == "" {
			name = "Unknown"
		}

		return newStatusError(statusCode, name, parsed.Message, parsed.Debug)
	}

	detail := string(body)
	if len(detail) > 200 {
		detail = detail[:200]
	}

	return newStatusError(statusCode, "HTTP Error", fmt.Sprintf("HTTP %d", statusCode), detail)
}

func retryable(err error) bool {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Retryable()
	}

	// Network-level failures never reached the server; safe to retry
	// for the read-style calls this client issues.
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
