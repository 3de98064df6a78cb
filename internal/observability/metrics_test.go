// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordLogin("password_incorrect")
	m.RecordLogin("success")
	m.RecordLogin("success")
	m.RecordCheck("authorized")
	m.RecordIssued()
	m.RecordEviction()
	m.RecordEviction()
	m.RecordRequest("POST /login", 303, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("password_incorrect")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ForwardAuthChecks.WithLabelValues("authorized")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsIssued), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.SessionsEvicted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST /login", "303")), 0)
}

func TestMetrics_TrackSessions(t *testing.T) {
	m := NewMetrics()
	live := 3
	m.TrackSessions(func() int { return live })

	families, err := m.Registry().Gather()
	assert.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "authgate_sessions_active" {
			found = true
			assert.InDelta(t, 3, f.GetMetric()[0].GetGauge().GetValue(), 0)
		}
	}
	assert.True(t, found, "authgate_sessions_active not registered")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Each Metrics owns its registry, so constructing twice must not panic.
	assert.NotPanics(t, func() {
		_ = NewMetrics()
		_ = NewMetrics()
	})
}
