// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/pkg/errutil"
)

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(username, password string) auth.VerifyResult {
	args := m.Called(username, password)
	return args.Get(0).(auth.VerifyResult)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// gateway wires the real components around a store containing alice/secret.
type gateway struct {
	service  *auth.Service
	registry *auth.SessionRegistry
	check    *auth.ForwardAuth
}

func newGateway(t *testing.T, opts ...auth.RegistryOption) *gateway {
	t.Helper()
	hasher := newTestHasher(t)
	store, err := auth.NewCredentialStore(map[string]string{
		"alice": mustHash(t, hasher, "secret"),
	}, hasher)
	require.NoError(t, err)

	registry, err := auth.NewSessionRegistry(rand.Reader, opts...)
	require.NoError(t, err)

	service, err := auth.NewService(store, registry)
	require.NoError(t, err)

	return &gateway{
		service:  service,
		registry: registry,
		check:    auth.NewForwardAuth(registry),
	}
}

func TestNewService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		credentials auth.CredentialVerifier
		sessions    auth.SessionIssuer
		opts        []auth.ServiceOption
		expectError string
	}{
		{
			name:        "nil credential verifier",
			sessions:    &mockIssuer{},
			expectError: "credential verifier is required",
		},
		{
			name:        "nil session issuer",
			credentials: &mockVerifier{},
			expectError: "session issuer is required",
		},
		{
			name:        "nil logger",
			credentials: &mockVerifier{},
			sessions:    &mockIssuer{},
			opts:        []auth.ServiceOption{auth.WithLogger(nil)},
			expectError: "logger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.credentials, tt.sessions, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
			errutil.AssertErrorCode(t, err, "AUTH_SERVICE_INVALID")
		})
	}
}

func TestService_Login_Scenario(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(t)

	t.Run("correct credentials issue a fresh token", func(t *testing.T) {
		result, err := gw.service.Login(ctx, auth.LoginAttempt{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		require.True(t, result.Succeeded())
		assert.Empty(t, result.Errors)
		assert.Len(t, result.Token, auth.DefaultTokenLength)
		assert.Equal(t, "success", result.Outcome())

		assert.Equal(t, auth.Authorized, gw.check.Check(result.Token))
	})

	t.Run("each success yields a distinct token", func(t *testing.T) {
		first, err := gw.service.Login(ctx, auth.LoginAttempt{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		second, err := gw.service.Login(ctx, auth.LoginAttempt{Username: "alice", Password: "secret"})
		require.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)
	})

	tests := []struct {
		name    string
		attempt auth.LoginAttempt
		want    auth.LoginErrors
	}{
		{
			name:    "wrong password",
			attempt: auth.LoginAttempt{Username: "alice", Password: "wrong"},
			want:    auth.LoginErrors{auth.PasswordIncorrect},
		},
		{
			name:    "unknown user",
			attempt: auth.LoginAttempt{Username: "bob", Password: "anything"},
			want:    auth.LoginErrors{auth.UsernameNotFound},
		},
		{
			name:    "both missing",
			attempt: auth.LoginAttempt{},
			want:    auth.LoginErrors{auth.UsernameMissing, auth.PasswordMissing},
		},
		{
			name:    "username missing",
			attempt: auth.LoginAttempt{Password: "secret"},
			want:    auth.LoginErrors{auth.UsernameMissing},
		},
		{
			name:    "password missing",
			attempt: auth.LoginAttempt{Username: "alice"},
			want:    auth.LoginErrors{auth.PasswordMissing},
		},
		{
			name:    "password missing for unknown user",
			attempt: auth.LoginAttempt{Username: "bielefeld"},
			want:    auth.LoginErrors{auth.PasswordMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := gw.registry.Len()

			result, err := gw.service.Login(ctx, tt.attempt)
			require.NoError(t, err)
			assert.False(t, result.Succeeded())
			assert.Empty(t, result.Token)
			assert.Equal(t, tt.want, result.Errors)
			assert.Equal(t, before, gw.registry.Len(), "failed attempts must not create sessions")
		})
	}
}

func TestService_Login_MissingUsernameNeverSucceeds(t *testing.T) {
	ctx := context.Background()
	gw := newGateway(t)

	for _, password := range []string{"", "secret", "wrong", strings.Repeat("x", 100)} {
		result, err := gw.service.Login(ctx, auth.LoginAttempt{Password: password})
		require.NoError(t, err)
		assert.False(t, result.Succeeded())

		if password == "" {
			assert.Equal(t, auth.LoginErrors{auth.UsernameMissing, auth.PasswordMissing}, result.Errors)
		} else {
			assert.Equal(t, auth.LoginErrors{auth.UsernameMissing}, result.Errors)
		}
	}
}

func TestService_Login_SkipsStoreWhenInputMissing(t *testing.T) {
	verifier := &mockVerifier{}
	issuer := &mockIssuer{}
	svc, err := auth.NewService(verifier, issuer)
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), auth.LoginAttempt{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "password_missing", result.Outcome())

	verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	issuer.AssertNotCalled(t, "Issue")
}

func TestService_Login_IssueFailure(t *testing.T) {
	verifier := &mockVerifier{}
	issuer := &mockIssuer{}
	svc, err := auth.NewService(verifier, issuer)
	require.NoError(t, err)

	verifier.On("Verify", "alice", "secret").Return(auth.VerifyMatch)
	issuer.On("Issue").Return("", errors.New("entropy exhausted"))

	result, err := svc.Login(context.Background(), auth.LoginAttempt{Username: "alice", Password: "secret"})
	require.Error(t, err)
	assert.Nil(t, result)
	errutil.AssertErrorCode(t, err, "AUTH_LOGIN_FAILED")
	errutil.AssertErrorContext(t, err, "operation", "issue session")

	verifier.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

func TestService_Login_LogsWithoutSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	verifier := &mockVerifier{}
	issuer := &mockIssuer{}
	svc, err := auth.NewService(verifier, issuer, auth.WithLogger(logger))
	require.NoError(t, err)

	verifier.On("Verify", "alice", "hunter2").Return(auth.VerifyMatch)
	issuer.On("Issue").Return("tok_abcdefghijklmnopqrstuvwxyz0123456789ABCDEFGHIJKLMN", nil)

	_, err = svc.Login(context.Background(), auth.LoginAttempt{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "login succeeded", entry["msg"])
	assert.Equal(t, "alice", entry["username"])
	assert.NotContains(t, buf.String(), "hunter2")
	assert.NotContains(t, buf.String(), "tok_abcdefghijklmnopqrstuvwxyz")
}

func TestLoginResult_Outcome(t *testing.T) {
	both := &auth.LoginResult{Errors: auth.LoginErrors{auth.UsernameMissing, auth.PasswordMissing}}
	assert.Equal(t, "input_missing", both.Outcome())

	notFound := &auth.LoginResult{Errors: auth.LoginErrors{auth.UsernameNotFound}}
	assert.Equal(t, "username_not_found", notFound.Outcome())
}
