// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"io"
	"net"
	"os"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/listener"
	"github.com/authgate/authgate/internal/observability"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// EntropySource returns the reader session tokens are drawn from.
	// Default: auth.NewEntropySource
	EntropySource func() (io.Reader, error)

	// ListenerFactory opens the HTTP listener.
	// Default: listener.Listen
	ListenerFactory func(addr string, mode os.FileMode) (net.Listener, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, metrics *observability.Metrics, ready observability.ReadinessChecker) ObservabilityServer

	// LogOutput receives log lines.
	// Default: os.Stderr
	LogOutput io.Writer

	// Ready is called once the HTTP listener is bound.
	Ready func(addr net.Addr)
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.EntropySource == nil {
		out.EntropySource = auth.NewEntropySource
	}
	if out.ListenerFactory == nil {
		out.ListenerFactory = listener.Listen
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, metrics *observability.Metrics, ready observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, metrics, ready)
		}
	}
	if out.LogOutput == nil {
		out.LogOutput = os.Stderr
	}
	return &out
}
