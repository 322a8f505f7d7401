// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/google/uuid"
)

// State is the connection state of a Proxy.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Handle identifies the live connection of a Proxy. A Proxy hands out the
// same *Handle until it is closed; reconnecting produces a new one.
type Handle struct {
	ID       uuid.UUID
	Backend  string
	Location string
	OpenedAt time.Time
}

// Proxy is the storage capability used by the rest of the application. Each
// Proxy owns at most one live connection and serializes every operation on
// it, so a single instance can be shared by any number of goroutines.
//
// Calling Execute or ExecuteScript after Close reconnects implicitly.
type Proxy interface {
	// Connect opens the connection if needed and returns its handle.
	// Calling it while connected returns the existing handle.
	Connect() (*Handle, error)
	// Close releases the connection, rolling back a pending transaction.
	// Closing a disconnected proxy is a no-op.
	Close() error
	// Commit commits the pending transaction. It fails with ErrStorage
	// while disconnected and is a no-op when nothing is pending.
	Commit() error
	// Rollback discards the pending transaction. It fails with ErrStorage
	// while disconnected and is a no-op when nothing is pending.
	Rollback() error
	// Execute runs exactly one statement. Placeholders are '?' for
	// positional arguments and :name/@name/$name for sql.Named arguments.
	Execute(statement string, args ...any) (*Rows, error)
	// ExecuteScript runs every statement of script atomically. If a
	// statement fails, the script's effects are rolled back and a
	// *SchemaError is returned.
	ExecuteScript(script string) error
	// State reports whether a connection is open.
	State() State
	// Options returns the options the proxy was built from.
	Options() Options
}
