// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package xdg provides XDG Base Directory paths for authgate.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "authgate"

// Default file names inside ConfigDir.
const (
	ConfigFileName      = "config.yaml"
	CredentialsFileName = "users.yaml"
)

// ConfigDir returns the XDG config directory for authgate.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName), nil
}

// ConfigFile returns the default configuration file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// CredentialsFile returns the default credentials file path.
func CredentialsFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CredentialsFileName), nil
}

func homeDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return home, nil
}
