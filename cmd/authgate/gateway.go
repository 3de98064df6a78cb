// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/i18n"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/web"
)

// gateway holds the wired components of a running authgate.
type gateway struct {
	store    *auth.CredentialStore
	registry *auth.SessionRegistry
	web      *web.Server
}

// buildGateway loads credentials and wires store, registry, login flow,
// forward-auth check and HTTP front end from cfg.
func buildGateway(cfg *config.Config, entropy io.Reader, metrics *observability.Metrics, logger *slog.Logger) (*gateway, error) {
	users, err := config.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	hasher, err := auth.NewMultiHasher(cfg.Hash.Algorithm, cfg.Hash.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to set up password hasher: %w", err)
	}

	store, err := auth.NewCredentialStore(users, hasher)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", cfg.CredentialsFile, err)
	}
	if store.Len() == 0 {
		logger.Warn("credentials file has no users; every login will fail", "path", cfg.CredentialsFile)
	}

	registry, err := auth.NewSessionRegistry(entropy,
		auth.WithCapacity(cfg.Session.Capacity),
		auth.WithTokenLength(cfg.Session.TokenLength),
		auth.WithEvictionHook(metrics.RecordEviction),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}
	metrics.TrackSessions(registry.Len)

	service, err := auth.NewService(store, registry, auth.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create login flow: %w", err)
	}

	catalog, err := i18n.NewCatalog(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load locale: %w", err)
	}

	server, err := web.NewServer(web.Config{
		CookieName:   cfg.Session.CookieName,
		CookieDomain: cfg.Session.CookieDomain,
		CookieSecure: cfg.Session.CookieSecure,
		PublicPaths:  cfg.PublicPaths,
	}, service, auth.NewForwardAuth(registry), catalog,
		web.WithLogger(logger),
		web.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http server: %w", err)
	}

	return &gateway{store: store, registry: registry, web: server}, nil
}

// loadConfig loads and validates configuration for a subcommand.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
