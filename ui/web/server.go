// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

// Package web serves the HTML front end: the auth pages, the user list and
// a health endpoint. Handlers reach storage only through the scope that the
// StorageScope middleware puts in the request context.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/db"
	"github.com/toeirei/scaffold/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	registerPath = config.AuthPrefix + config.AuthRegisterRoute
	loginPath    = config.AuthPrefix + config.AuthLoginRoute
	logoutPath   = config.AuthPrefix + config.AuthLogoutRoute
)

// Server holds the HTTP handler tree and what the handlers share.
type Server struct {
	cfg     config.Config
	factory db.Factory
	process *db.Scope
	secret  []byte
	ttl     time.Duration
	tmpl    *template.Template
	handler http.Handler
	now     func() time.Time
}

// New builds a Server. process is the scope attached to requests in
// process-scope mode; factory builds the proxies of per-request scopes.
func New(cfg config.Config, factory db.Factory, process *db.Scope) (*Server, error) {
	if factory == nil {
		return nil, errors.New("web: nil storage factory")
	}
	if process == nil {
		process = db.NewScope(factory)
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	secret := cfg.Server.SecretKey
	if secret == "" {
		secret = config.DefaultSecretKey
	}
	if secret == config.DefaultSecretKey {
		logging.Warnf("web: using the development secret key; set server.secret_key in production")
	}
	ttl := time.Duration(cfg.Server.SessionHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	s := &Server{
		cfg:     cfg,
		factory: factory,
		process: process,
		secret:  []byte(secret),
		ttl:     ttl,
		tmpl:    tmpl,
		now:     time.Now,
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	page := func(h http.HandlerFunc) http.HandlerFunc {
		return Chain(h, s.StorageScope, LogRequests)
	}
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return Chain(h, s.LoginRequired, s.StorageScope, LogRequests)
	}

	mux.HandleFunc("GET /healthz", page(s.handleHealth))
	mux.HandleFunc("GET "+registerPath, page(s.handleRegisterForm))
	mux.HandleFunc("POST "+registerPath, page(s.handleRegister))
	mux.HandleFunc("GET "+loginPath, page(s.handleLoginForm))
	mux.HandleFunc("POST "+loginPath, page(s.handleLogin))
	mux.HandleFunc("GET "+logoutPath, page(s.handleLogout))
	mux.HandleFunc("POST "+logoutPath, page(s.handleLogout))
	mux.HandleFunc("GET /users", private(s.handleUsers))
	mux.HandleFunc("GET /{$}", page(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users", http.StatusSeeOther)
	}))
	return mux
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on cfg.Server.Addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Infof("web: listening on %s (storage scope %s)", srv.Addr, s.scopeMode())
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) scopeMode() string {
	if s.cfg.Database.Scope == config.ScopeRequest {
		return config.ScopeRequest
	}
	return config.ScopeProcess
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logging.Errorf("web: render %s: %v", name, err)
	}
}
