// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package config

// Process-wide constants.
const (
	AppName   = "scaffold"
	EnvPrefix = "scaffold"

	// DBGlobalName is the scope key under which the application database
	// proxy is stored.
	DBGlobalName = "db"

	DefaultInstancePath = "instance"
	DefaultDBFile       = "scaffold.sqlite3"
	DefaultAddr         = "127.0.0.1:5000"
	// DefaultSecretKey is for development only.
	DefaultSecretKey = "dev-scaffold"

	ScopeProcess = "process"
	ScopeRequest = "request"

	AuthPrefix        = "/auth"
	AuthRegisterRoute = "/register"
	AuthLoginRoute    = "/login"
	AuthLogoutRoute   = "/logout"
	SessionCookie     = "scaffold_session"
)
