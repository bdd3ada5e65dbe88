package api

import (
	"log/slog"
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithBaseURL sets the backend base URL.
// If not set, defaults to the HAIVLER_API_URL environment variable.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTokenStore sets the persistence for the bearer token. The client
// reads the store before every request and writes it on successful login.
// If not set, an in-memory store is used (tests, throwaway sessions).
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithAuthFailureHandler registers the callback invoked when any operation
// receives HTTP 401. The transport layer only emits the event; deciding
// how the application reacts (clearing session state, telling the user to
// log in again) is the subscriber's job. The token cookie is purged before
// the handler runs.
func WithAuthFailureHandler(fn func()) Option {
	return func(c *Client) {
		c.onAuthFailure = fn
	}
}

// WithEndpoints replaces the opaque endpoint path table. Call sites are
// untouched by a swap.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = e
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}
