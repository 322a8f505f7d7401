// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

// Package schema bootstraps the application tables. Every backend has an
// embedded DDL and DML script; both can be replaced by files on disk. A
// script is applied at most once: its version and checksum are recorded in
// schema_migrations by the same atomic script run that applies it.
package schema

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/toeirei/scaffold/internal/db"
	"github.com/toeirei/scaffold/internal/logging"
)

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var embedded embed.FS

// Script versions, in application order.
const (
	DDL = "schema-ddl"
	DML = "schema-dml"
)

// Script is one bootstrap script.
type Script struct {
	Version string
	// Source is the embedded path or the override file it was read from.
	Source string
	Body   string
}

// Checksum is the hex sha256 of the script body.
func (s Script) Checksum() string {
	sum := sha256.Sum256([]byte(s.Body))
	return hex.EncodeToString(sum[:])
}

// Sources overrides the embedded scripts. Empty fields keep the embedded one.
type Sources struct {
	DDLPath string
	DMLPath string
}

// Embedded returns the embedded script of a backend.
func Embedded(backend, version string) (Script, error) {
	p := path.Join(backend, version+".sql")
	b, err := embedded.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Script{}, fmt.Errorf("%w: no embedded %s for backend %q", db.ErrConfig, version, backend)
		}
		return Script{}, err
	}
	return Script{Version: version, Source: "embedded:" + p, Body: string(b)}, nil
}

// Load returns the DDL and DML scripts for backend.
func Load(backend string, src Sources) ([]Script, error) {
	var out []Script
	for _, v := range []struct {
		version  string
		override string
	}{{DDL, src.DDLPath}, {DML, src.DMLPath}} {
		if v.override != "" {
			b, err := os.ReadFile(v.override)
			if err != nil {
				return nil, fmt.Errorf("read %s script: %w", v.version, err)
			}
			out = append(out, Script{Version: v.version, Source: v.override, Body: string(b)})
			continue
		}
		s, err := Embedded(backend, v.version)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func migrationsDDL(backend string) string {
	// MySQL cannot index TEXT without a length.
	if backend == db.BackendMySQL {
		return `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, checksum VARCHAR(64) NOT NULL, applied_at VARCHAR(40) NOT NULL)`
	}
	return `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, checksum TEXT NOT NULL, applied_at TEXT NOT NULL)`
}

// Applied returns the recorded checksum per version.
func Applied(p db.Proxy) (map[string]string, error) {
	if _, err := p.Execute(migrationsDDL(p.Options().Backend())); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	rows, err := p.Execute("SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	out := make(map[string]string, rows.Len())
	for r := range rows.All() {
		out[r.String("version")] = r.String("checksum")
	}
	return out, nil
}

// Apply runs every script not yet recorded, in order, and returns the
// versions it applied. A recorded script whose checksum changed is skipped
// with a warning. The first failing script stops Apply; its error is the
// *db.SchemaError from ExecuteScript and nothing of that script remains.
func Apply(p db.Proxy, scripts []Script) ([]string, error) {
	applied, err := Applied(p)
	if err != nil {
		return nil, err
	}
	var done []string
	for _, s := range scripts {
		sum := s.Checksum()
		if prev, ok := applied[s.Version]; ok {
			if prev != sum {
				logging.Warnf("schema: %s already applied with checksum %.12s, %s has %.12s; not re-applying", s.Version, prev, s.Source, sum)
			}
			continue
		}
		// The bookkeeping insert rides in the same script so it commits or
		// rolls back together with the schema change. The leading newline
		// ends a trailing line comment of the body.
		body := s.Body + "\n;\n" + fmt.Sprintf(
			"INSERT INTO schema_migrations (version, checksum, applied_at) VALUES ('%s', '%s', '%s')",
			s.Version, sum, time.Now().UTC().Format(time.RFC3339))
		if err := p.ExecuteScript(body); err != nil {
			return done, fmt.Errorf("apply %s (%s): %w", s.Version, s.Source, err)
		}
		logging.Infof("schema: applied %s from %s", s.Version, s.Source)
		done = append(done, s.Version)
	}
	return done, nil
}

// Init loads the scripts for the proxy's backend, applies them and commits.
func Init(p db.Proxy, src Sources) ([]string, error) {
	scripts, err := Load(p.Options().Backend(), src)
	if err != nil {
		return nil, err
	}
	done, err := Apply(p, scripts)
	if err != nil {
		if p.State() != db.Connected {
			return done, err
		}
		if rbErr := p.Rollback(); rbErr != nil {
			logging.Warnf("schema: rollback after failed init: %v", rbErr)
		}
		return done, err
	}
	if err := p.Commit(); err != nil {
		return done, err
	}
	return done, nil
}
