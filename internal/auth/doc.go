// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package auth provides the authentication core of authgate.
//
// # Components
//
// The package is built from four collaborating pieces:
//   - CredentialStore - read-only username to password-hash mapping, built once at startup
//   - SessionRegistry - bounded, least-recently-issued set of live session tokens
//   - Service - runs one login attempt and yields either LoginErrors or a new token
//   - ForwardAuth - answers "is this token authenticated" for a perimeter proxy
//
// Constructors validate their inputs and fail fast: a malformed stored hash or an
// unreadable entropy source is reported by NewCredentialStore or NewEntropySource
// and must abort startup.
//
// # Ownership
//
// There is no package-level state. The SessionRegistry is created by the caller and
// handed to both Service and ForwardAuth so that every request handler shares the
// same instance explicitly.
package auth
