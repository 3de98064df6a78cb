// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package web serves the login page and the forward-auth endpoint.
//
// Routes:
//   - GET  /login  login form; errors arrive as repeated "error" query params
//   - POST /login  credential submission; sets the session cookie on success
//   - GET  /auth   forward-auth check for a reverse proxy (200 or 401)
//   - GET  /       status page for a logged-in browser
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/i18n"
	"github.com/authgate/authgate/internal/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

// shutdownTimeout bounds how long Serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// LoginFlow authenticates a login attempt.
type LoginFlow interface {
	Login(ctx context.Context, attempt auth.LoginAttempt) (*auth.LoginResult, error)
}

// SessionChecker decides whether a presented token is a live session.
type SessionChecker interface {
	Check(token string) auth.Decision
}

// Config holds the HTTP-facing settings.
type Config struct {
	CookieName   string
	CookieDomain string
	CookieSecure bool
	PublicPaths  []string
}

// Server is the gateway's HTTP front end.
type Server struct {
	cfg       Config
	flow      LoginFlow
	check     SessionChecker
	catalog   *i18n.Catalog
	public    *PublicPaths
	templates *template.Template
	logger    *slog.Logger
	metrics   *observability.Metrics
	handler   http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records request and authentication metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// NewServer builds the HTTP front end. Public path patterns are compiled
// here, so a bad pattern fails startup.
func NewServer(cfg Config, flow LoginFlow, check SessionChecker, catalog *i18n.Catalog, opts ...Option) (*Server, error) {
	if flow == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("login flow is required")
	}
	if check == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("session checker is required")
	}
	if catalog == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("catalog is required")
	}
	if cfg.CookieName == "" {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("cookie name is required")
	}

	public, err := NewPublicPaths(cfg.PublicPaths)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("WEB_TEMPLATE_INVALID").Wrap(err)
	}

	s := &Server{
		cfg:       cfg,
		flow:      flow,
		check:     check,
		catalog:   catalog,
		public:    public,
		templates: tmpl,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code("WEB_SERVER_INVALID").Errorf("logger must not be nil")
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}

	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /login", s.handleLoginPage)
	s.handle(mux, "POST /login", s.handleLogin)
	s.handle(mux, "GET /auth", s.handleAuth)
	s.handle(mux, "GET /{$}", s.handleStatus)

	return s.requestID(s.accessLog(s.recoverer(mux)))
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(l)
	}()

	s.logger.Info("http server started", "addr", l.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.Code("WEB_SERVE_FAILED").With("addr", l.Addr().String()).Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("WEB_SHUTDOWN_FAILED").With("operation", "shutdown http server").Wrap(err)
	}
	<-errCh

	s.logger.Info("http server stopped")
	return nil
}
