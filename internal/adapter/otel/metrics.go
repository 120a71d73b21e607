package otel

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "campuskit"

// Metrics holds the CampusKit metric instruments and implements the handler
// pipeline's observer.
type Metrics struct {
	Requests        metric.Int64Counter
	AuthFailures    metric.Int64Counter
	RateLimitDenies metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Requests, err = meter.Int64Counter("campuskit.requests",
		metric.WithDescription("Number of API requests by method and status"))
	if err != nil {
		return nil, err
	}

	m.AuthFailures, err = meter.Int64Counter("campuskit.auth.failures",
		metric.WithDescription("Number of failed authentication attempts"))
	if err != nil {
		return nil, err
	}

	m.RateLimitDenies, err = meter.Int64Counter("campuskit.ratelimit.denials",
		metric.WithDescription("Number of rate-limited requests"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(method string, status int) {
	m.Requests.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.status", strconv.Itoa(status)),
	))
}

// ObserveAuthFailure records one rejected credential.
func (m *Metrics) ObserveAuthFailure() {
	m.AuthFailures.Add(context.Background(), 1)
}

// ObserveRateLimitDenial records one rate-limited request.
func (m *Metrics) ObserveRateLimitDenial() {
	m.RateLimitDenies.Add(context.Background(), 1)
}
