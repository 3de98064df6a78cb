// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package web

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/logging"
	"github.com/authgate/authgate/pkg/errutil"
)

// Form and query parameter names.
const (
	paramUsername = "username"
	paramPassword = "password"
	paramRedirect = "rd"

	headerForwardedURI = "X-Forwarded-Uri"
)

// maxFormBytes caps the size of a login form body.
const maxFormBytes = 16 << 10

type loginPage struct {
	I18n     map[string]string
	Errors   map[string]string
	Username string
	Redirect string
}

type statusPage struct {
	I18n map[string]string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := auth.ParseLoginErrorsQuery(q)

	rd := q.Get(paramRedirect)
	if !isLocalRedirect(rd) {
		rd = ""
	}

	s.render(w, r, http.StatusOK, "login.html", loginPage{
		I18n:     s.catalog.Strings(),
		Errors:   s.catalog.FieldErrors(errs),
		Username: q.Get(paramUsername),
		Redirect: rd,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "invalid login form", "error", err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	username := r.PostForm.Get(paramUsername)
	rd := r.PostForm.Get(paramRedirect)

	result, err := s.flow.Login(ctx, auth.LoginAttempt{
		Username: username,
		Password: r.PostForm.Get(paramPassword),
	})
	if err != nil {
		errutil.LogErrorContext(ctx, logger, "login failed", err)
		s.metrics.RecordLogin("error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordLogin(result.Outcome())

	if !result.Succeeded() {
		q := url.Values{}
		result.Errors.AddTo(q)
		if username != "" {
			q.Set(paramUsername, username)
		}
		if isLocalRedirect(rd) {
			q.Set(paramRedirect, rd)
		}
		http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
		return
	}

	s.metrics.RecordIssued()
	http.SetCookie(w, s.sessionCookie(result.Token))

	if !isLocalRedirect(rd) {
		rd = "/"
	}
	http.Redirect(w, r, rd, http.StatusSeeOther)
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if s.public.Match(r.Header.Get(headerForwardedURI)) {
		s.metrics.RecordCheck("public")
		w.WriteHeader(http.StatusOK)
		return
	}

	decision := s.check.Check(s.tokenFromRequest(r))
	s.metrics.RecordCheck(decision.String())

	if decision == auth.Authorized {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.check.Check(s.tokenFromRequest(r)) != auth.Authorized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "status.html", statusPage{I18n: s.catalog.Strings()})
}

// tokenFromRequest returns the session cookie value, falling back to an
// Authorization: Bearer header. Empty means no token was presented.
func (s *Server) tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	token, ok := parseBearerToken(r.Header.Get("Authorization"))
	if !ok {
		return ""
	}
	return token
}

func parseBearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func (s *Server) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		Secure:   s.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// isLocalRedirect accepts absolute paths on this origin only. Browsers strip
// tabs and newlines from URLs, so any control character is rejected:
// "/\t/host" would otherwise be followed as "//host".
func isLocalRedirect(rd string) bool {
	if rd == "" || rd[0] != '/' {
		return false
	}
	for i := 0; i < len(rd); i++ {
		if rd[i] < 0x20 || rd[i] == 0x7f {
			return false
		}
	}
	if len(rd) > 1 && (rd[1] == '/' || rd[1] == '\\') {
		return false
	}
	u, err := url.Parse(rd)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		ctx := r.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // client may disconnect
	w.Write(buf.Bytes())
}
