// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig reports unusable Options (bad path, unparsable DSN, unknown
	// backend). It is never retried.
	ErrConfig = errors.New("invalid storage configuration")
	// ErrStorage reports connect failures, commit/rollback while
	// disconnected and handle-level I/O failures.
	ErrStorage = errors.New("storage error")
	// ErrSchema reports a failed statement inside ExecuteScript. The
	// script's effects have been rolled back when it is returned.
	ErrSchema = errors.New("schema script failed")
	// ErrScopeEnded is returned by Scope.Get after Scope.End.
	ErrScopeEnded = errors.New("scope already ended")
	// ErrNoScope is returned by FromContext when the context carries no scope.
	ErrNoScope = errors.New("no storage scope in context")
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
)

// StorageError carries the proxy operation that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage: %s failed", e.Op)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes every StorageError match ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// SchemaError identifies the statement of a script that failed. Index is
// zero-based.
type SchemaError struct {
	Index     int
	Statement string
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: statement %d (%s): %v", e.Index+1, abbreviate(e.Statement, 60), e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is makes every SchemaError match ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConfig) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// configError keeps the underlying cause of an ErrConfig.
type configError struct {
	msg string
	err error
}

func (e *configError) Error() string {
	if e.err == nil {
		return ErrConfig.Error() + ": " + e.msg
	}
	return ErrConfig.Error() + ": " + e.msg + ": " + e.err.Error()
}

func (e *configError) Unwrap() error       { return e.err }
func (e *configError) Is(target error) bool { return target == ErrConfig }

func configErr(err error, format string, args ...any) error {
	return &configError{msg: fmt.Sprintf(format, args...), err: err}
}

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). This is a
// conservative, string-based mapping to avoid importing SQL driver packages
// into this package file.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func abbreviate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
