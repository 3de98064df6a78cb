// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/listener"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/observability"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the login page and forward-auth endpoint",
		Long: `Start the HTTP server that renders the login page, issues session
cookies and answers forward-auth checks on /auth.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runServeWithDeps runs the gateway until ctx is cancelled or a signal
// arrives. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.SetDefault(serviceName, version, cfg.LoggingOptions(), deps.LogOutput)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	entropy, err := deps.EntropySource()
	if err != nil {
		return fmt.Errorf("no usable entropy source: %w", err)
	}

	metrics := observability.NewMetrics()
	gw, err := buildGateway(cfg, entropy, metrics, logger)
	if err != nil {
		return err
	}

	mode, err := listener.ParseSocketMode(cfg.SocketMode)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	l, err := deps.ListenerFactory(cfg.Listen, mode)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ready atomic.Bool
	var obsServer ObservabilityServer
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, metrics, ready.Load)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			_ = l.Close()
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	logger.Info("authgate ready",
		"listen", l.Addr().String(),
		"users", gw.store.Len(),
		"session_capacity", gw.registry.Capacity(),
		"public_paths", len(cfg.PublicPaths),
	)
	cmd.Println("authgate listening on " + l.Addr().String())
	ready.Store(true)
	if deps.Ready != nil {
		deps.Ready(l.Addr())
	}

	serveErr := gw.web.Serve(ctx, l)
	ready.Store(false)

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	if serveErr != nil {
		return fmt.Errorf("http server error: %w", serveErr)
	}
	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a background server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
