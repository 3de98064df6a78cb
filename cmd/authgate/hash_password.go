// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/config"
)

// maxPasswordInput bounds how much of stdin hash-password reads.
const maxPasswordInput = 4096

type hashPasswordOptions struct {
	algorithm string
	cost      int
	username  string
}

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	opts := &hashPasswordOptions{}

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin for the credentials file",
		Long: `Read a password from stdin and print its hash. With --username the
output is a YAML line that can be appended to the credentials file.

The algorithm and bcrypt cost default to the hash section of the config file.`,
		Example: `  printf '%s' 'correct horse' | authgate hash-password --username alice >> users.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHashPassword(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.algorithm, "algorithm", auth.AlgorithmBcrypt, "hash algorithm (bcrypt or argon2id)")
	cmd.Flags().IntVar(&opts.cost, "cost", 0, "bcrypt cost (0 = library default)")
	cmd.Flags().StringVar(&opts.username, "username", "", "emit a 'username: hash' YAML line")

	return cmd
}

func runHashPassword(cmd *cobra.Command, opts *hashPasswordOptions) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	algorithm := cfg.Hash.Algorithm
	if cmd.Flags().Changed("algorithm") {
		algorithm = opts.algorithm
	}
	cost := cfg.Hash.BcryptCost
	if cmd.Flags().Changed("cost") {
		cost = opts.cost
	}

	hasher, err := auth.NewMultiHasher(algorithm, cost)
	if err != nil {
		return fmt.Errorf("failed to set up password hasher: %w", err)
	}

	password, err := readPassword(cmd.InOrStdin())
	if err != nil {
		return err
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if opts.username == "" {
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	}

	line, err := yaml.Marshal(map[string]string{opts.username: hash})
	if err != nil {
		return fmt.Errorf("failed to encode credentials line: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(line))
	return nil
}

// readPassword reads stdin up to EOF and drops one trailing line ending.
func readPassword(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPasswordInput+1))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(data) > maxPasswordInput {
		return "", fmt.Errorf("password exceeds %d bytes", maxPasswordInput)
	}

	password := strings.TrimSuffix(string(data), "\n")
	password = strings.TrimSuffix(password, "\r")
	if password == "" {
		return "", fmt.Errorf("no password given on stdin")
	}
	return password, nil
}
