package db

import (
	"errors"
	"testing"
)

func TestNewOptions(t *testing.T) {
	cases := []struct {
		dbType, dsn, mode string
		wantBackend       string
		wantMode          TransactionMode
		wantLocation      string
	}{
		{"", "", "", BackendSqlite, AutoCommit, MemoryPath},
		{"sqlite", "./app.db", "manual", BackendSqlite, Manual, "./app.db"},
		{"postgres", "postgres://u:pw@h/db", "autocommit", BackendPostgres, AutoCommit, "postgres://u:***@h/db"},
		{"mysql", "u:pw@tcp(h:3306)/db", "MANUAL", BackendMySQL, Manual, "u:***@tcp(h:3306)/db"},
	}
	for _, c := range cases {
		o, err := NewOptions(c.dbType, c.dsn, c.mode)
		if err != nil {
			t.Fatalf("NewOptions(%q): %v", c.dbType, err)
		}
		if o.Backend() != c.wantBackend || o.TxMode() != c.wantMode || o.Location() != c.wantLocation {
			t.Fatalf("NewOptions(%q,%q,%q) = %s/%s/%s", c.dbType, c.dsn, c.mode, o.Backend(), o.TxMode(), o.Location())
		}
	}
}

func TestNewOptions_Errors(t *testing.T) {
	if _, err := NewOptions("oracle", "", ""); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for unknown backend, got %v", err)
	}
	if _, err := NewOptions("sqlite", "", "sometimes"); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for unknown mode, got %v", err)
	}
}

func TestTransactionModeString(t *testing.T) {
	if AutoCommit.String() != "autocommit" || Manual.String() != "manual" {
		t.Fatalf("unexpected mode names %s %s", AutoCommit, Manual)
	}
}

func TestRedactDSN(t *testing.T) {
	cases := map[string]string{
		"host=localhost dbname=app":   "host=localhost dbname=app",
		"postgres://u@h/db":           "postgres://u@h/db",
		"postgres://u:p@ss@h/db":      "postgres://u:***@h/db",
		"user:secret@unix(/tmp/s)/db": "user:***@unix(/tmp/s)/db",
	}
	for in, want := range cases {
		if got := redactDSN(in); got != want {
			t.Fatalf("redactDSN(%q) = %q; want %q", in, got, want)
		}
	}
}
