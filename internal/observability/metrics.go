// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics contains the gateway's Prometheus metrics and the registry they
// are registered with.
type Metrics struct {
	registry *prometheus.Registry

	LoginAttempts     *prometheus.CounterVec
	ForwardAuthChecks *prometheus.CounterVec
	SessionsIssued    prometheus.Counter
	SessionsEvicted   prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// NewMetrics creates a private registry with the standard Go and process
// collectors and registers the gateway metrics on it.
func NewMetrics() *Metrics {
	// A private registry keeps tests and embedders off the global one.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_login_attempts_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ForwardAuthChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_forward_auth_checks_total",
				Help: "Total number of forward-auth checks by decision",
			},
			[]string{"decision"},
		),
		SessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_sessions_issued_total",
			Help: "Total number of session tokens issued",
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_sessions_evicted_total",
			Help: "Total number of sessions evicted to make room for new ones",
		}),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authgate_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		m.LoginAttempts,
		m.ForwardAuthChecks,
		m.SessionsIssued,
		m.SessionsEvicted,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackSessions exposes the live session count through a gauge that calls
// count on every scrape. It must be called at most once.
func (m *Metrics) TrackSessions(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "authgate_sessions_active",
			Help: "Number of sessions currently held by the registry",
		},
		func() float64 { return float64(count()) },
	))
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// RecordCheck counts a forward-auth decision.
func (m *Metrics) RecordCheck(decision string) {
	m.ForwardAuthChecks.WithLabelValues(decision).Inc()
}

// RecordIssued counts a newly issued session.
func (m *Metrics) RecordIssued() {
	m.SessionsIssued.Inc()
}

// RecordEviction counts an evicted session. It matches the registry's
// eviction hook signature.
func (m *Metrics) RecordEviction() {
	m.SessionsEvicted.Inc()
}

// RecordRequest counts a served HTTP request.
func (m *Metrics) RecordRequest(route string, code int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
