// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package config loads and validates the gateway configuration.
//
// Values are layered: built-in defaults, then the YAML config file, then
// AUTHGATE_* environment variables, then command-line flags. Nested keys use
// "." in files and "__" in environment variable names, so
// AUTHGATE_SESSION__CAPACITY sets session.capacity.
package config

import (
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/listener"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/internal/xdg"
)

// Default values.
const (
	DefaultListen      = "127.0.0.1:8080"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLocale      = "en"
	DefaultCookieName  = "authgate_session"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// Config is the complete gateway configuration.
type Config struct {
	Listen          string   `koanf:"listen" json:"listen,omitempty" jsonschema:"description=TCP host:port or absolute unix socket path"`
	SocketMode      string   `koanf:"socket_mode" json:"socket_mode,omitempty" jsonschema:"description=Octal permissions for a unix socket,pattern=^0?[0-7]{3}$"`
	CredentialsFile string   `koanf:"credentials_file" json:"credentials_file,omitempty" jsonschema:"description=YAML file mapping usernames to password hashes"`
	Locale          string   `koanf:"locale" json:"locale,omitempty" jsonschema:"description=Language of the login page"`
	MetricsAddr     string   `koanf:"metrics_addr" json:"metrics_addr,omitempty" jsonschema:"description=Metrics and health endpoint address; empty disables"`
	PublicPaths     []string `koanf:"public_paths" json:"public_paths,omitempty" jsonschema:"description=Glob patterns of forwarded URIs that bypass authentication"`

	Session SessionConfig `koanf:"session" json:"session,omitempty"`
	Hash    HashConfig    `koanf:"hash" json:"hash,omitempty"`
	Log     LogConfig     `koanf:"log" json:"log,omitempty"`
}

// SessionConfig controls the session registry and cookie.
type SessionConfig struct {
	Capacity     int    `koanf:"capacity" json:"capacity,omitempty" jsonschema:"minimum=1"`
	TokenLength  int    `koanf:"token_length" json:"token_length,omitempty" jsonschema:"minimum=50"`
	CookieName   string `koanf:"cookie_name" json:"cookie_name,omitempty"`
	CookieDomain string `koanf:"cookie_domain" json:"cookie_domain,omitempty"`
	CookieSecure bool   `koanf:"cookie_secure" json:"cookie_secure,omitempty"`
}

// HashConfig selects the algorithm used by hash-password.
type HashConfig struct {
	Algorithm  string `koanf:"algorithm" json:"algorithm,omitempty" jsonschema:"enum=bcrypt,enum=argon2id"`
	BcryptCost int    `koanf:"bcrypt_cost" json:"bcrypt_cost,omitempty" jsonschema:"minimum=0,maximum=31"`
}

// LogConfig controls log output.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=warning,enum=error"`
}

// Defaults returns a Config populated with built-in defaults.
func Defaults() *Config {
	credentials, err := xdg.CredentialsFile()
	if err != nil {
		credentials = ""
	}
	return &Config{
		Listen:          DefaultListen,
		CredentialsFile: credentials,
		Locale:          DefaultLocale,
		MetricsAddr:     DefaultMetricsAddr,
		Session: SessionConfig{
			Capacity:    auth.DefaultSessionCapacity,
			TokenLength: auth.DefaultTokenLength,
			CookieName:  DefaultCookieName,
		},
		Hash: HashConfig{
			Algorithm: auth.AlgorithmBcrypt,
		},
		Log: LogConfig{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return invalid("listen", "listen address is required")
	}
	if c.SocketMode != "" {
		if !listener.IsUnixPath(c.Listen) {
			return invalid("socket_mode", "socket_mode requires a unix socket listen path")
		}
		if _, err := listener.ParseSocketMode(c.SocketMode); err != nil {
			return err
		}
	}
	if c.CredentialsFile == "" {
		return invalid("credentials_file", "credentials file is required")
	}
	if c.Locale == "" {
		return invalid("locale", "locale is required")
	}
	for _, p := range c.PublicPaths {
		if p == "" {
			return invalid("public_paths", "public path patterns must not be empty")
		}
	}

	if c.Session.Capacity < 1 {
		return invalid("session.capacity", "session capacity must be at least 1")
	}
	if c.Session.TokenLength < auth.MinTokenLength {
		return invalid("session.token_length", "session token length is below the minimum")
	}
	if !validCookieName(c.Session.CookieName) {
		return invalid("session.cookie_name", "cookie name is empty or contains reserved characters")
	}

	switch c.Hash.Algorithm {
	case auth.AlgorithmBcrypt, auth.AlgorithmArgon2id:
	default:
		return invalid("hash.algorithm", "hash algorithm must be bcrypt or argon2id")
	}
	if c.Hash.BcryptCost != 0 && (c.Hash.BcryptCost < bcrypt.MinCost || c.Hash.BcryptCost > bcrypt.MaxCost) {
		return invalid("hash.bcrypt_cost", "bcrypt cost is out of range")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log format must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "log level must be debug, info, warn or error")
	}
	return nil
}

// LoggingOptions returns the logging options described by c.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Format: c.Log.Format, Level: c.Log.Level}
}

func invalid(key, msg string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf("%s", msg)
}

// validCookieName reports whether name is a non-empty RFC 6265 token.
func validCookieName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune(`()<>@,;:\"/[]?={}`, r) {
			return false
		}
	}
	return true
}
