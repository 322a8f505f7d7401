// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLProxy is the MySQL implementation of the Proxy interface.
//
// MySQL commits DDL implicitly, so a script mixing CREATE TABLE with a later
// failing statement cannot be fully rolled back on this engine.
type MySQLProxy struct {
	sqlProxy
}

var _ Proxy = (*MySQLProxy)(nil)

// NewMySQLProxy returns a disconnected proxy.
func NewMySQLProxy(opts MySQLOptions) *MySQLProxy {
	p := &MySQLProxy{}
	p.opts = opts
	p.engine = backendEngine{
		dbType:           BackendMySQL,
		driverName:       "mysql",
		backslashEscapes: true,
		prepare: func() (string, error) {
			dsn := strings.TrimSpace(opts.DSN)
			if dsn == "" {
				return "", configErr(nil, "mysql DSN is empty")
			}
			cfg, err := mysql.ParseDSN(dsn)
			if err != nil {
				return "", configErr(err, "mysql DSN %s is malformed", opts.Location())
			}
			// DATETIME columns come back as time.Time.
			cfg.ParseTime = true
			// RowsAffected counts matched rows, as on the other engines.
			cfg.ClientFoundRows = true
			return cfg.FormatDSN(), nil
		},
	}
	return p
}
