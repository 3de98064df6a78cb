// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package config

import (
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// LoadCredentials reads a YAML mapping of username to password hash.
//
//	alice: $2b$10$...
//	bob: $argon2id$v=19$m=65536,t=1,p=4$...
//
// Duplicate usernames are rejected by the parser. Hash validity is checked
// when the credential store is built.
func LoadCredentials(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("CREDENTIALS_LOAD_FAILED").With("path", path).Wrap(err)
	}
	return ParseCredentials(data)
}

// ParseCredentials decodes credentials file content.
func ParseCredentials(data []byte) (map[string]string, error) {
	users := make(map[string]string)
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, oops.Code("CREDENTIALS_INVALID").Wrap(err)
	}
	return users, nil
}
