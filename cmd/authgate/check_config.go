// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/observability"
)

// NewCheckConfigCmd creates the check-config subcommand.
func NewCheckConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate configuration and credentials without serving",
		Long: `Load the configuration and credentials file and build every component
serve would build, then exit. A non-zero exit status means serve would
fail to start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckConfig(cmd, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runCheckConfig validates the configuration. If deps is nil, default
// implementations are used.
func runCheckConfig(cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	entropy, err := deps.EntropySource()
	if err != nil {
		return fmt.Errorf("no usable entropy source: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw, err := buildGateway(cfg, entropy, observability.NewMetrics(), logger)
	if err != nil {
		return err
	}

	cmd.Printf("configuration OK: %d users, listen %s, session capacity %d\n",
		gw.store.Len(), cfg.Listen, gw.registry.Capacity())
	return nil
}
