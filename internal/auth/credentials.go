// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"maps"
	"slices"

	"github.com/samber/oops"
)

// VerifyResult is the outcome of checking a password against the store.
type VerifyResult int

// Verification outcomes.
const (
	VerifyNotFound VerifyResult = iota
	VerifyMismatch
	VerifyMatch
)

// String returns a lowercase name for the result, used in logs and metrics.
func (r VerifyResult) String() string {
	switch r {
	case VerifyNotFound:
		return "not_found"
	case VerifyMismatch:
		return "mismatch"
	case VerifyMatch:
		return "match"
	default:
		return "unknown"
	}
}

// dummyPassword is hashed for an empty store so that lookups for unknown
// users still pay for a full hash verification.
const dummyPassword = "authgate-timing-equaliser"

// CredentialStore holds the fixed set of username/password-hash pairs.
// It is immutable after construction and safe for concurrent use.
type CredentialStore struct {
	hashes    map[string]string
	hasher    PasswordHasher
	dummyHash string
}

// NewCredentialStore builds a store from a username to password-hash map.
// Every hash is validated up front; a malformed entry fails construction.
func NewCredentialStore(hashes map[string]string, hasher PasswordHasher) (*CredentialStore, error) {
	if hasher == nil {
		return nil, oops.Code("CREDENTIAL_STORE_INVALID").Errorf("password hasher is required")
	}

	copied := make(map[string]string, len(hashes))
	for username, hash := range hashes {
		if username == "" {
			return nil, oops.Code("CREDENTIAL_INVALID_USERNAME").Errorf("username cannot be empty")
		}
		if err := hasher.Validate(hash); err != nil {
			return nil, oops.Code("CREDENTIAL_INVALID_HASH").
				With("username", username).
				Wrapf(err, "invalid password hash for user %q", username)
		}
		copied[username] = hash
	}

	dummy, err := timingHash(copied, hasher)
	if err != nil {
		return nil, err
	}

	return &CredentialStore{
		hashes:    copied,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// timingHash returns the hash verified for unknown usernames. A stored hash
// is reused so the algorithm and cost match those of real users; the one of
// the lexically first username is picked to keep the choice stable.
func timingHash(hashes map[string]string, hasher PasswordHasher) (string, error) {
	if len(hashes) > 0 {
		return hashes[slices.Min(slices.Collect(maps.Keys(hashes)))], nil
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return "", oops.Code("CREDENTIAL_STORE_INVALID").
			With("operation", "hash dummy password").
			Wrap(err)
	}
	return dummy, nil
}

// Verify checks password against the stored hash for username.
func (s *CredentialStore) Verify(username, password string) VerifyResult {
	hash, ok := s.hashes[username]
	if !ok {
		//nolint:errcheck // result discarded, only the elapsed time matters
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return VerifyNotFound
	}

	// Hashes were validated at construction, so an error here can only mean
	// the hasher rejected this particular input; treat it as a mismatch.
	valid, err := s.hasher.Verify(password, hash)
	if err != nil || !valid {
		return VerifyMismatch
	}
	return VerifyMatch
}

// Len returns the number of loaded credentials.
func (s *CredentialStore) Len() int {
	return len(s.hashes)
}
