// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// CredentialVerifier checks a username/password pair.
type CredentialVerifier interface {
	Verify(username, password string) VerifyResult
}

// SessionIssuer mints new session tokens.
type SessionIssuer interface {
	Issue() (string, error)
}

// LoginAttempt is one submitted login form. Empty strings mean the field was
// absent.
type LoginAttempt struct {
	Username string
	Password string
}

// LoginResult is the terminal outcome of a login attempt. Exactly one of
// Errors and Token is set.
type LoginResult struct {
	Errors LoginErrors
	Token  string
}

// Succeeded reports whether the attempt produced a session token.
func (r *LoginResult) Succeeded() bool {
	return r.Token != "" && len(r.Errors) == 0
}

// Outcome returns a short label for logs and metrics.
func (r *LoginResult) Outcome() string {
	if r.Succeeded() {
		return "success"
	}
	if len(r.Errors) == 1 {
		return r.Errors[0].String()
	}
	return "input_missing"
}

// Service runs login attempts.
type Service struct {
	credentials CredentialVerifier
	sessions    SessionIssuer
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for login outcomes.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service.
func NewService(credentials CredentialVerifier, sessions SessionIssuer, opts ...ServiceOption) (*Service, error) {
	if credentials == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("credential verifier is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("session issuer is required")
	}

	s := &Service{
		credentials: credentials,
		sessions:    sessions,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger cannot be nil")
	}
	return s, nil
}

// Login validates the attempt, checks credentials and issues a session on
// success. Rejections are reported in LoginResult.Errors; the error return is
// reserved for internal failures such as an unreadable entropy source.
func (s *Service) Login(ctx context.Context, attempt LoginAttempt) (*LoginResult, error) {
	var missing LoginErrors
	if attempt.Username == "" {
		missing = append(missing, UsernameMissing)
	}
	if attempt.Password == "" {
		missing = append(missing, PasswordMissing)
	}
	if len(missing) > 0 {
		s.logger.DebugContext(ctx, "login rejected", "errors", missing.Strings())
		return &LoginResult{Errors: missing}, nil
	}

	switch s.credentials.Verify(attempt.Username, attempt.Password) {
	case VerifyNotFound:
		s.logger.InfoContext(ctx, "login rejected",
			"username", attempt.Username,
			"reason", UsernameNotFound.String(),
		)
		return &LoginResult{Errors: LoginErrors{UsernameNotFound}}, nil
	case VerifyMismatch:
		s.logger.InfoContext(ctx, "login rejected",
			"username", attempt.Username,
			"reason", PasswordIncorrect.String(),
		)
		return &LoginResult{Errors: LoginErrors{PasswordIncorrect}}, nil
	case VerifyMatch:
	}

	token, err := s.sessions.Issue()
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue session").
			With("username", attempt.Username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "username", attempt.Username)
	return &LoginResult{Token: token}, nil
}
