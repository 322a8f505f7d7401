package db

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMaintain_SQLiteFile(t *testing.T) {
	p := NewSqliteProxy(SqliteOptions{Path: filepath.Join(t.TempDir(), "m.db")})
	defer func() { _ = p.Close() }()
	if _, err := p.Execute("CREATE TABLE t (id INTEGER)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := Maintain(p); err != nil {
		t.Fatalf("Maintain: %v", err)
	}
}

func TestMaintain_RejectsManualMode(t *testing.T) {
	p := NewSqliteProxy(SqliteOptions{Mode: Manual})
	defer func() { _ = p.Close() }()
	if err := Maintain(p); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestMaintain_PostgresWithMock(t *testing.T) {
	mock, _ := withMockOpen(t)
	mock.ExpectExec("VACUUM ANALYZE").WillReturnResult(sqlmock.NewResult(0, 0))

	p := NewPostgresProxy(PostgresOptions{DSN: "host=localhost dbname=app"})
	if err := Maintain(p); err != nil {
		t.Fatalf("Maintain: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMaintain_MySQLWithMock(t *testing.T) {
	mock, _ := withMockOpen(t)
	mock.ExpectQuery("SHOW TABLES").WillReturnRows(sqlmock.NewRows([]string{"Tables_in_app"}).AddRow("sys_user").AddRow("sys_role"))
	mock.ExpectExec("OPTIMIZE TABLE `sys_user`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("OPTIMIZE TABLE `sys_role`").WillReturnError(errors.New("locked"))

	p := NewMySQLProxy(MySQLOptions{DSN: "app:pw@tcp(localhost:3306)/app"})
	err := Maintain(p)
	if err == nil {
		t.Fatalf("expected error from failed optimize")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
