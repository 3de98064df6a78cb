// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// serviceName identifies this process in logs.
const serviceName = "authgate"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authgate",
		Short: "authgate - a login page and forward-auth endpoint for reverse proxies",
		Long: `authgate serves a login form backed by a file of password hashes and
issues session cookies. Reverse proxies (nginx auth_request, Traefik
forwardAuth, Caddy forward_auth) call its /auth endpoint to decide whether
a request may reach the protected upstream.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/authgate/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHashPasswordCmd())
	cmd.AddCommand(NewCheckConfigCmd())

	return cmd
}
