// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/authgate/authgate/internal/xdg"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "AUTHGATE_"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"listen":           "listen",
	"socket-mode":      "socket_mode",
	"credentials-file": "credentials_file",
	"locale":           "locale",
	"metrics-addr":     "metrics_addr",
	"public-path":      "public_paths",
	"session-capacity": "session.capacity",
	"cookie-secure":    "session.cookie_secure",
	"log-format":       "log.format",
	"log-level":        "log.level",
}

// RegisterFlags adds the configuration flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("listen", d.Listen, "listen address (host:port or absolute unix socket path)")
	fs.String("socket-mode", d.SocketMode, "octal permissions for a unix socket (e.g. 0660)")
	fs.String("credentials-file", d.CredentialsFile, "YAML file mapping usernames to password hashes")
	fs.String("locale", d.Locale, "login page language")
	fs.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.StringSlice("public-path", d.PublicPaths, "forwarded URI glob that bypasses authentication (repeatable)")
	fs.Int("session-capacity", d.Session.Capacity, "maximum number of live sessions")
	fs.Bool("cookie-secure", d.Session.CookieSecure, "mark the session cookie Secure")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
}

// Load builds a Config from defaults, the YAML file at path, AUTHGATE_*
// environment variables and flags, in increasing order of precedence.
//
// An empty path falls back to the XDG default config file when it exists.
// flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagValue(flags)), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	def, err := xdg.ConfigFile()
	if err != nil {
		return "", nil //nolint:nilerr // no home directory means no default file
	}
	if _, err := os.Stat(def); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", oops.Code("CONFIG_LOAD_FAILED").With("path", def).Wrap(err)
	}
	return def, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	if err := ValidateSchema(data); err != nil {
		return oops.Code("CONFIG_SCHEMA_INVALID").With("path", path).Wrap(err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// envKey maps AUTHGATE_SESSION__COOKIE_NAME to session.cookie_name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// flagValue maps known flags to their configuration keys and skips the rest.
func flagValue(flags *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	}
}
