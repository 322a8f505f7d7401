// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/scaffold/internal/db"

import (
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// PostgresProxy is the PostgreSQL implementation of the Proxy interface.
//
// A failed statement aborts a pending Manual-mode transaction on
// PostgreSQL; callers must Rollback before issuing further statements.
type PostgresProxy struct {
	sqlProxy
}

var _ Proxy = (*PostgresProxy)(nil)

// NewPostgresProxy returns a disconnected proxy.
func NewPostgresProxy(opts PostgresOptions) *PostgresProxy {
	p := &PostgresProxy{}
	p.opts = opts
	p.engine = backendEngine{
		dbType: BackendPostgres,
		// The pgx stdlib registers driver name "pgx".
		driverName:         "pgx",
		dollarPlaceholders: true,
		prepare: func() (string, error) {
			dsn := strings.TrimSpace(opts.DSN)
			if dsn == "" {
				return "", configErr(nil, "postgres DSN is empty")
			}
			if _, err := pgx.ParseConfig(dsn); err != nil {
				return "", configErr(err, "postgres DSN %s is malformed", opts.Location())
			}
			return dsn, nil
		},
	}
	return p
}
