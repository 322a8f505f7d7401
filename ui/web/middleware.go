// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/db"
	"github.com/toeirei/scaffold/internal/logging"
)

// Middleware wraps a handler.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies middleware so that the first one listed runs innermost.
func Chain(h http.HandlerFunc, middleware ...Middleware) http.HandlerFunc {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogRequests logs one record per request after it completes.
func LogRequests(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.With("remote", r.RemoteAddr, "method", r.Method, "path", r.URL.Path).
			Info("request", "status", rec.status, "duration", time.Since(start))
	}
}

// StorageScope attaches a storage scope to the request context. With
// config.ScopeRequest every request gets a fresh scope that is ended, and
// its proxies closed, once the handler returns; otherwise the long-lived
// process scope is attached.
func (s *Server) StorageScope(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Database.Scope == config.ScopeRequest {
			scope := db.NewScope(s.factory)
			defer func() {
				if err := scope.End(); err != nil {
					logging.Warnf("web: end request scope: %v", err)
				}
			}()
			next.ServeHTTP(w, r.WithContext(db.WithScope(r.Context(), scope)))
			return
		}
		next.ServeHTTP(w, r.WithContext(db.WithScope(r.Context(), s.process)))
	}
}

// LoginRequired redirects to the login page unless the request carries a
// valid session cookie.
func (s *Server) LoginRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(config.SessionCookie)
		if err != nil {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		claims, err := parseToken(s.secret, cookie.Value)
		if err != nil {
			logging.Debugf("web: rejected session cookie: %v", err)
			clearSession(w)
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}
