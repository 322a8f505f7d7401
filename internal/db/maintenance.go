// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
)

// Maintain performs engine-specific maintenance through p. For SQLite this
// runs PRAGMA optimize, VACUUM, a WAL checkpoint and an integrity check. For
// Postgres it runs VACUUM ANALYZE. For MySQL it runs OPTIMIZE TABLE for all
// tables. p must be in AutoCommit mode; VACUUM cannot run inside a
// transaction.
func Maintain(p Proxy) error {
	if p.Options().TxMode() == Manual {
		return configErr(nil, "maintenance needs an autocommit proxy")
	}

	switch p.Options().Backend() {
	case BackendSqlite:
		// PRAGMA optimize may not be useful for in-memory databases; treat
		// its errors as non-fatal.
		if _, err := p.Execute("PRAGMA optimize"); err != nil {
			dbLogf("db: sqlite optimize failed (ignored): %v", err)
		}
		if _, err := p.Execute("VACUUM"); err != nil {
			return fmt.Errorf("sqlite vacuum failed: %w", err)
		}
		// WAL checkpoint; ignore errors if not in WAL mode.
		_, _ = p.Execute("PRAGMA wal_checkpoint(TRUNCATE)")
		rows, err := p.Execute("PRAGMA integrity_check")
		if err != nil {
			return fmt.Errorf("sqlite integrity_check failed: %w", err)
		}
		if rows.Next() {
			if res := fmt.Sprint(rows.Row().Index(0)); res != "ok" {
				return fmt.Errorf("sqlite integrity_check failed: %s", res)
			}
		}
	case BackendPostgres:
		if _, err := p.Execute("VACUUM ANALYZE"); err != nil {
			return fmt.Errorf("postgres vacuum failed: %w", err)
		}
	case BackendMySQL:
		rows, err := p.Execute("SHOW TABLES")
		if err != nil {
			return fmt.Errorf("mysql show tables failed: %w", err)
		}
		var errs []error
		for r := range rows.All() {
			table := fmt.Sprint(r.Index(0))
			// Non-fatal per table: remember the error and continue.
			if _, err := p.Execute(fmt.Sprintf("OPTIMIZE TABLE `%s`", table)); err != nil {
				dbLogf("db: mysql optimize table %s failed: %v", table, err)
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("mysql optimize encountered errors: %w", errors.Join(errs...))
		}
	default:
		return configErr(nil, "unsupported backend for maintenance: %s", p.Options().Backend())
	}
	return nil
}
