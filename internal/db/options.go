// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"fmt"
	"strings"
)

// Supported backend names, as used in configuration (`database.type`).
const (
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// MemoryPath is the SQLite location of an ephemeral in-memory store.
const MemoryPath = ":memory:"

// TransactionMode decides whether single statements commit on their own.
type TransactionMode int

const (
	// AutoCommit makes every Execute call its own committed transaction.
	AutoCommit TransactionMode = iota
	// Manual keeps statements pending until Commit or Rollback. A pending
	// transaction is rolled back on Close.
	Manual
)

func (m TransactionMode) String() string {
	switch m {
	case AutoCommit:
		return "autocommit"
	case Manual:
		return "manual"
	default:
		return fmt.Sprintf("TransactionMode(%d)", int(m))
	}
}

// ParseTransactionMode accepts "autocommit" (or "auto", or empty) and "manual".
func ParseTransactionMode(s string) (TransactionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "autocommit":
		return AutoCommit, nil
	case "manual":
		return Manual, nil
	default:
		return AutoCommit, fmt.Errorf("%w: unknown transaction mode %q", ErrConfig, s)
	}
}

// Options describes how a Proxy reaches its backing store. Implementations
// are plain values; nothing is validated until Connect.
type Options interface {
	// Backend returns the backend name (one of the Backend* constants).
	Backend() string
	// TxMode returns the transaction mode every Proxy built from these
	// options uses.
	TxMode() TransactionMode
	// Location returns the store location with defaults applied. It is used
	// for logging and must not include credentials.
	Location() string
}

// SqliteOptions configures a SqliteProxy.
type SqliteOptions struct {
	// Path is a filesystem path or a sqlite URI. Empty means MemoryPath.
	Path string
	// Mode is the transaction mode. Zero value is AutoCommit.
	Mode TransactionMode
	// BusyTimeoutMS is applied through PRAGMA busy_timeout. Zero means 5000.
	BusyTimeoutMS int
}

func (o SqliteOptions) Backend() string         { return BackendSqlite }
func (o SqliteOptions) TxMode() TransactionMode { return o.Mode }

func (o SqliteOptions) Location() string {
	if o.Path == "" {
		return MemoryPath
	}
	return o.Path
}

func (o SqliteOptions) busyTimeout() int {
	if o.BusyTimeoutMS <= 0 {
		return 5000
	}
	return o.BusyTimeoutMS
}

// PostgresOptions configures a PostgresProxy. DSN accepts both URL and
// keyword/value forms understood by pgx.
type PostgresOptions struct {
	DSN  string
	Mode TransactionMode
}

func (o PostgresOptions) Backend() string         { return BackendPostgres }
func (o PostgresOptions) TxMode() TransactionMode { return o.Mode }
func (o PostgresOptions) Location() string        { return redactDSN(o.DSN) }

// MySQLOptions configures a MySQLProxy. DSN uses the go-sql-driver format,
// e.g. "user:pass@tcp(127.0.0.1:3306)/app".
type MySQLOptions struct {
	DSN  string
	Mode TransactionMode
}

func (o MySQLOptions) Backend() string         { return BackendMySQL }
func (o MySQLOptions) TxMode() TransactionMode { return o.Mode }
func (o MySQLOptions) Location() string        { return redactDSN(o.DSN) }

// NewOptions builds backend options from configuration values. An unknown
// backend or transaction mode is reported as ErrConfig.
func NewOptions(dbType, dsn, mode string) (Options, error) {
	m, err := ParseTransactionMode(mode)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(dbType) {
	case "", BackendSqlite, "sqlite3":
		return SqliteOptions{Path: dsn, Mode: m}, nil
	case BackendPostgres, "postgresql", "pgx":
		return PostgresOptions{DSN: dsn, Mode: m}, nil
	case BackendMySQL:
		return MySQLOptions{DSN: dsn, Mode: m}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported database type '%s'", ErrConfig, dbType)
	}
}

// redactDSN hides the password part of URL style and user:pass@ DSNs.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	start := 0
	if i := strings.Index(creds, "://"); i >= 0 {
		start = i + 3
	}
	colon := strings.Index(creds[start:], ":")
	if colon < 0 {
		return dsn
	}
	return creds[:start+colon] + ":***" + dsn[at:]
}
