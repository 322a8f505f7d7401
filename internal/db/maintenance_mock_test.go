// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectSqliteInit(mock sqlmock.Sqlmock) {
	mock.ExpectExec("PRAGMA foreign_keys = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("PRAGMA busy_timeout = 5000").WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestMaintain_Sqlite_WithMock_Success(t *testing.T) {
	mock, _ := withMockOpen(t)
	expectSqliteInit(mock)
	// PRAGMA statements return rows, so they go through Query.
	mock.ExpectQuery("PRAGMA optimize").WillReturnRows(sqlmock.NewRows([]string{"optimize"}))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("PRAGMA wal_checkpoint\\(").WillReturnRows(sqlmock.NewRows([]string{"busy", "log", "checkpointed"}).AddRow(0, 0, 0))
	mock.ExpectQuery("PRAGMA integrity_check").WillReturnRows(sqlmock.NewRows([]string{"integrity_check"}).AddRow("ok"))

	p := NewSqliteProxy(SqliteOptions{Path: MemoryPath})
	if err := Maintain(p); err != nil {
		t.Fatalf("expected Maintain success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMaintain_Sqlite_WithMock_IntegrityFailure(t *testing.T) {
	mock, _ := withMockOpen(t)
	expectSqliteInit(mock)
	mock.ExpectQuery("PRAGMA optimize").WillReturnRows(sqlmock.NewRows([]string{"optimize"}))
	mock.ExpectExec("VACUUM").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("PRAGMA wal_checkpoint\\(").WillReturnRows(sqlmock.NewRows([]string{"busy"}).AddRow(0))
	mock.ExpectQuery("PRAGMA integrity_check").WillReturnRows(sqlmock.NewRows([]string{"integrity_check"}).AddRow("*** in database main ***"))

	p := NewSqliteProxy(SqliteOptions{Path: MemoryPath})
	if err := Maintain(p); err == nil {
		t.Fatalf("expected integrity_check failure")
	}
}
