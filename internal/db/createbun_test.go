package db

import (
	"database/sql"
	"testing"

	"github.com/uptrace/bun/dialect"
	_ "modernc.org/sqlite"
)

func TestCreateBunDB_VariousDialects(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	cases := map[string]dialect.Name{
		BackendSqlite:   dialect.SQLite,
		BackendPostgres: dialect.PG,
		BackendMySQL:    dialect.MySQL,
		"unknown":       dialect.SQLite,
	}
	for typ, want := range cases {
		b := createBunDB(sqlDB, typ)
		if b == nil {
			t.Fatalf("createBunDB returned nil for dialect %s", typ)
		}
		if got := b.Dialect().Name(); got != want {
			t.Fatalf("createBunDB(%s) dialect = %v; want %v", typ, got, want)
		}
	}
}
