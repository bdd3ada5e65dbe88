package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the OpenTelemetry instruments recorded by the client.
// Every operation passes through the response funnel exactly once, so the
// counters line up one-to-one with issued requests.
type Metrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	authFailures metric.Int64Counter
}

// NewMetrics creates the client instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("haivler.client.requests",
		metric.WithDescription("API requests issued, by operation and outcome"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("haivler.client.request_duration",
		metric.WithDescription("API request duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter("haivler.client.auth_failures",
		metric.WithDescription("401 responses that tore down the session"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requests:     requests,
		duration:     duration,
		authFailures: authFailures,
	}, nil
}

// NopMetrics returns a recorder whose instruments discard everything.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("haivler-cli"))
	return m
}

// observe records one completed request.
func (m *Metrics) observe(ctx context.Context, op, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("operation", op)))
}

// authFailure records one session teardown.
func (m *Metrics) authFailure(ctx context.Context, op string) {
	m.authFailures.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", op)))
}
