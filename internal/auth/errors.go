// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"net/url"
	"strings"
)

// LoginError is a recoverable reason a login attempt was rejected.
type LoginError int

// Login error kinds. The order of declaration is the order in which they are
// reported when several apply.
const (
	UsernameMissing LoginError = iota + 1
	UsernameNotFound
	PasswordMissing
	PasswordIncorrect
)

// Form fields that login errors are attached to.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// errorQueryKey is the query parameter that carries encoded login errors.
const errorQueryKey = "error"

var loginErrorIDs = map[LoginError]string{
	UsernameMissing:   "username_missing",
	UsernameNotFound:  "username_not_found",
	PasswordMissing:   "password_missing",
	PasswordIncorrect: "password_incorrect",
}

var loginErrorsByID = map[string]LoginError{
	"username_missing":   UsernameMissing,
	"username_not_found": UsernameNotFound,
	"password_missing":   PasswordMissing,
	"password_incorrect": PasswordIncorrect,
}

// String returns the stable identifier used on the wire.
func (e LoginError) String() string {
	if id, ok := loginErrorIDs[e]; ok {
		return id
	}
	return "unknown"
}

// Field returns the form field the error belongs to.
func (e LoginError) Field() string {
	switch e {
	case UsernameMissing, UsernameNotFound:
		return FieldUsername
	case PasswordMissing, PasswordIncorrect:
		return FieldPassword
	default:
		return ""
	}
}

// ParseLoginError maps a wire identifier back to its LoginError.
func ParseLoginError(id string) (LoginError, bool) {
	e, ok := loginErrorsByID[id]
	return e, ok
}

// LoginErrors is an ordered list of login errors.
type LoginErrors []LoginError

// Strings returns the wire identifiers in order.
func (errs LoginErrors) Strings() []string {
	ids := make([]string, len(errs))
	for i, e := range errs {
		ids[i] = e.String()
	}
	return ids
}

// Query encodes the errors as repeated error= parameters, preserving order.
func (errs LoginErrors) Query() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = errorQueryKey + "=" + url.QueryEscape(e.String())
	}
	return strings.Join(parts, "&")
}

// AddTo appends the errors to values under the error key.
func (errs LoginErrors) AddTo(values url.Values) {
	for _, e := range errs {
		values.Add(errorQueryKey, e.String())
	}
}

// Contains reports whether target is in the list.
func (errs LoginErrors) Contains(target LoginError) bool {
	for _, e := range errs {
		if e == target {
			return true
		}
	}
	return false
}

// ParseLoginErrors decodes wire identifiers in order. Unknown identifiers are
// dropped without error.
func ParseLoginErrors(ids []string) LoginErrors {
	var errs LoginErrors
	for _, id := range ids {
		if e, ok := ParseLoginError(id); ok {
			errs = append(errs, e)
		}
	}
	return errs
}

// ParseLoginErrorsQuery decodes the error parameters of a query string.
func ParseLoginErrorsQuery(values url.Values) LoginErrors {
	return ParseLoginErrors(values[errorQueryKey])
}
