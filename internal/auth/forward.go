// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

// SessionValidator reports whether a session token is live.
type SessionValidator interface {
	IsValid(token string) bool
}

// Decision is the answer to a forward-auth check.
type Decision int

// Forward-auth decisions.
const (
	Unauthorized Decision = iota
	Authorized
)

func (d Decision) String() string {
	if d == Authorized {
		return "authorized"
	}
	return "unauthorized"
}

// ForwardAuth answers per-request authentication checks for a reverse proxy.
type ForwardAuth struct {
	sessions SessionValidator
}

// NewForwardAuth creates a ForwardAuth backed by sessions.
func NewForwardAuth(sessions SessionValidator) *ForwardAuth {
	return &ForwardAuth{sessions: sessions}
}

// Check returns Authorized iff token is non-empty and live.
func (f *ForwardAuth) Check(token string) Decision {
	if token == "" {
		return Unauthorized
	}
	if f.sessions.IsValid(token) {
		return Authorized
	}
	return Unauthorized
}
