// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/auth"
)

func TestLoginError_IdentifiersAndFields(t *testing.T) {
	tests := []struct {
		err   auth.LoginError
		id    string
		field string
	}{
		{auth.UsernameMissing, "username_missing", auth.FieldUsername},
		{auth.UsernameNotFound, "username_not_found", auth.FieldUsername},
		{auth.PasswordMissing, "password_missing", auth.FieldPassword},
		{auth.PasswordIncorrect, "password_incorrect", auth.FieldPassword},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.id, tt.err.String())
			assert.Equal(t, tt.field, tt.err.Field())

			parsed, ok := auth.ParseLoginError(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.err, parsed)
		})
	}

	t.Run("zero value", func(t *testing.T) {
		var e auth.LoginError
		assert.Equal(t, "unknown", e.String())
		assert.Empty(t, e.Field())
	})
}

func TestLoginErrors_RoundTrip(t *testing.T) {
	sets := []auth.LoginErrors{
		{auth.UsernameMissing, auth.PasswordMissing},
		{auth.PasswordMissing, auth.UsernameMissing},
		{auth.UsernameNotFound},
		{auth.PasswordIncorrect},
	}

	for _, errs := range sets {
		t.Run(errs.Query(), func(t *testing.T) {
			assert.Equal(t, errs, auth.ParseLoginErrors(errs.Strings()))

			values, err := url.ParseQuery(errs.Query())
			require.NoError(t, err)
			assert.Equal(t, errs, auth.ParseLoginErrorsQuery(values))
		})
	}
}

func TestParseLoginErrors_DropsUnknown(t *testing.T) {
	got := auth.ParseLoginErrors([]string{
		"bogus",
		"password_incorrect",
		"",
		"USERNAME_MISSING",
		"username_missing",
		"no_username",
	})
	assert.Equal(t, auth.LoginErrors{auth.PasswordIncorrect, auth.UsernameMissing}, got)

	assert.Empty(t, auth.ParseLoginErrors(nil))
	assert.Empty(t, auth.ParseLoginErrors([]string{"nope"}))
}

func TestParseLoginErrorsQuery_IgnoresOtherKeys(t *testing.T) {
	values, err := url.ParseQuery("username=alice&error=username_not_found&rd=%2Fapp&error=zzz")
	require.NoError(t, err)

	assert.Equal(t, auth.LoginErrors{auth.UsernameNotFound}, auth.ParseLoginErrorsQuery(values))
}

func TestLoginErrors_Query(t *testing.T) {
	errs := auth.LoginErrors{auth.UsernameMissing, auth.PasswordMissing}
	assert.Equal(t, "error=username_missing&error=password_missing", errs.Query())
	assert.Empty(t, auth.LoginErrors{}.Query())

	values := url.Values{"username": {"bob"}}
	errs.AddTo(values)
	assert.Equal(t, []string{"username_missing", "password_missing"}, values["error"])
	assert.True(t, errs.Contains(auth.PasswordMissing))
	assert.False(t, errs.Contains(auth.PasswordIncorrect))
}
