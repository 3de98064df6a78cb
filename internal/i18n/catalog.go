// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package i18n holds the user-facing strings of the login page.
package i18n

import (
	"maps"
	"slices"

	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

// String keys available in every locale.
const (
	KeyLocale              = "locale"
	KeyLoginTitle          = "login_title"
	KeyLoginSubtitle       = "login_subtitle"
	KeyUsernameLabel       = "username_label"
	KeyUsernamePlaceholder = "username_placeholder"
	KeyPasswordLabel       = "password_label"
	KeyPasswordPlaceholder = "password_placeholder"
	KeyLoginButton         = "login_button"
	KeyStatusTitle         = "status_title"
	KeyStatusLoggedIn      = "status_logged_in"
)

type locale struct {
	strings map[string]string
	errors  map[auth.LoginError]string
}

var locales = map[string]locale{
	"en": {
		strings: map[string]string{
			KeyLocale:              "en",
			KeyLoginTitle:          "Login",
			KeyLoginSubtitle:       "You need to login to access this page:",
			KeyUsernameLabel:       "Username:",
			KeyUsernamePlaceholder: "username",
			KeyPasswordLabel:       "Password:",
			KeyPasswordPlaceholder: "password",
			KeyLoginButton:         "Login",
			KeyStatusTitle:         "Logged in",
			KeyStatusLoggedIn:      "You are logged in.",
		},
		errors: map[auth.LoginError]string{
			auth.UsernameMissing:   "You must enter a username",
			auth.UsernameNotFound:  "Could not find a user with that username",
			auth.PasswordMissing:   "You must enter a password",
			auth.PasswordIncorrect: "Incorrect password",
		},
	},
}

// Locales returns the supported locale names, sorted.
func Locales() []string {
	return slices.Sorted(maps.Keys(locales))
}

// Catalog resolves strings and error messages for one locale.
// A Catalog is immutable and safe for concurrent use.
type Catalog struct {
	name string
	loc  locale
}

// NewCatalog returns the catalog for name. Unknown locales are an error.
func NewCatalog(name string) (*Catalog, error) {
	loc, ok := locales[name]
	if !ok {
		return nil, oops.Code("I18N_UNKNOWN_LOCALE").
			With("locale", name).
			With("supported", Locales()).
			Errorf("unsupported locale %q", name)
	}
	return &Catalog{name: name, loc: loc}, nil
}

// Locale returns the catalog's locale name.
func (c *Catalog) Locale() string {
	return c.name
}

// String returns the string for key, or key itself when it is not defined.
func (c *Catalog) String(key string) string {
	if s, ok := c.loc.strings[key]; ok {
		return s
	}
	return key
}

// Strings returns a copy of every string in the catalog.
func (c *Catalog) Strings() map[string]string {
	return maps.Clone(c.loc.strings)
}

// ErrorMessage returns the message for a login error.
func (c *Catalog) ErrorMessage(e auth.LoginError) string {
	if s, ok := c.loc.errors[e]; ok {
		return s
	}
	return e.String()
}

// FieldErrors maps each form field to the message of its first error.
func (c *Catalog) FieldErrors(errs auth.LoginErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		field := e.Field()
		if field == "" {
			continue
		}
		if _, seen := out[field]; !seen {
			out[field] = c.ErrorMessage(e)
		}
	}
	return out
}
