// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db // import "github.com/toeirei/scaffold/internal/db"

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
// Bun's formatter gives every backend the same '?' placeholder syntax.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case BackendSqlite:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	case BackendPostgres:
		return bun.NewDB(sqlDB, pgdialect.New())
	case BackendMySQL:
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		// Fallback to SQLite dialect as a safe default; callers should validate dbType earlier.
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}
