// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/scaffold/internal/db"

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uptrace/bun"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteProxy is the SQLite implementation of the Proxy interface.
type SqliteProxy struct {
	sqlProxy
}

var _ Proxy = (*SqliteProxy)(nil)

// NewSqliteProxy returns a disconnected proxy. Nothing is opened until the
// first Connect, Execute or ExecuteScript.
func NewSqliteProxy(opts SqliteOptions) *SqliteProxy {
	p := &SqliteProxy{}
	p.opts = opts
	p.engine = backendEngine{
		dbType:     BackendSqlite,
		driverName: "sqlite",
		prepare:    func() (string, error) { return sqliteDSN(opts) },
		init: func(ctx context.Context, conn bun.Conn) error {
			if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
				return err
			}
			_, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", opts.busyTimeout()))
			return err
		},
	}
	return p
}

// sqliteDSN validates the location. In-memory stores and sqlite URIs are
// passed through; plain paths must name a file in an existing directory.
func sqliteDSN(opts SqliteOptions) (string, error) {
	loc := opts.Location()
	if loc == MemoryPath || strings.HasPrefix(loc, "file:") {
		return loc, nil
	}
	if fi, err := os.Stat(loc); err == nil && fi.IsDir() {
		return "", configErr(nil, "sqlite path %s is a directory", loc)
	}
	dir := filepath.Dir(loc)
	fi, err := os.Stat(dir)
	if err != nil {
		return "", configErr(err, "sqlite directory %s is not accessible", dir)
	}
	if !fi.IsDir() {
		return "", configErr(nil, "sqlite parent %s is not a directory", dir)
	}
	return loc, nil
}
