// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var errNotConnected = errors.New("not connected")

// backendEngine holds what differs between engines.
type backendEngine struct {
	dbType     string
	driverName string
	// prepare validates the options and returns the DSN for sql.Open.
	prepare func() (string, error)
	// init runs once on every freshly opened connection.
	init func(ctx context.Context, conn bun.Conn) error
	// backslashEscapes is set for engines where \' escapes a quote.
	backslashEscapes bool
	// dollarPlaceholders is set for drivers that bind $1, $2, ... instead
	// of '?'.
	dollarPlaceholders bool
}

// querier is satisfied by *sql.Conn and *sql.Tx. Arguments go to the
// driver as bind parameters; bun's client-side formatter is not involved.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// sqlProxy implements Proxy on top of database/sql. The *bun.DB is limited
// to one open connection and that connection is pinned as a bun.Conn for as
// long as the proxy is connected. mu guards every field below it and is held
// for the whole duration of each operation, I/O included.
type sqlProxy struct {
	opts   Options
	engine backendEngine

	mu         sync.Mutex
	bun        *bun.DB
	conn       bun.Conn
	handle     *Handle
	tx         *bun.Tx
	savepoints int
}

func (p *sqlProxy) Options() Options { return p.opts }

func (p *sqlProxy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != nil {
		return Connected
	}
	return Disconnected
}

func (p *sqlProxy) Connect() (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked()
}

// connectLocked opens the connection. mu must be held.
func (p *sqlProxy) connectLocked() (*Handle, error) {
	if p.handle != nil {
		return p.handle, nil
	}
	dsn, err := p.engine.prepare()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(p.engine.driverName, dsn)
	if err != nil {
		return nil, storageErr("connect", err)
	}
	// One handle per proxy: the pool never grows past the pinned conn.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	bunDB := createBunDB(sqlDB, p.engine.dbType)
	ctx := context.Background()
	conn, err := bunDB.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
	}
	if err == nil && p.engine.init != nil {
		err = p.engine.init(ctx, conn)
	}
	if err != nil {
		if conn.Conn != nil {
			_ = conn.Close()
		}
		_ = bunDB.Close()
		return nil, storageErr("connect", err)
	}

	p.bun = bunDB
	p.conn = conn
	p.handle = &Handle{
		ID:       uuid.New(),
		Backend:  p.engine.dbType,
		Location: p.opts.Location(),
		OpenedAt: time.Now(),
	}
	dbLogf("db: %s connected to %s in %s (handle %s, mode %s)", p.engine.dbType, p.handle.Location, time.Since(start), p.handle.ID, p.opts.TxMode())
	return p.handle, nil
}

func (p *sqlProxy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return nil
	}
	var errs []error
	if p.tx != nil {
		if err := p.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback pending transaction: %w", err))
		}
		p.tx = nil
	}
	if err := p.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, err)
	}
	if err := p.bun.Close(); err != nil {
		errs = append(errs, err)
	}
	dbLogf("db: %s handle %s closed after %s", p.engine.dbType, p.handle.ID, time.Since(p.handle.OpenedAt))
	p.bun, p.conn, p.handle, p.savepoints = nil, bun.Conn{}, nil, 0
	if len(errs) > 0 {
		return storageErr("close", errors.Join(errs...))
	}
	return nil
}

func (p *sqlProxy) Commit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return storageErr("commit", errNotConnected)
	}
	if p.tx == nil {
		return nil
	}
	err := p.tx.Commit()
	p.tx, p.savepoints = nil, 0
	return storageErr("commit", err)
}

func (p *sqlProxy) Rollback() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return storageErr("rollback", errNotConnected)
	}
	if p.tx == nil {
		return nil
	}
	err := p.tx.Rollback()
	p.tx, p.savepoints = nil, 0
	return storageErr("rollback", err)
}

// pendingLocked returns the Manual-mode transaction, opening it on demand.
func (p *sqlProxy) pendingLocked(ctx context.Context) (*bun.Tx, error) {
	if p.tx != nil {
		return p.tx, nil
	}
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	p.tx = &tx
	return p.tx, nil
}

func (p *sqlProxy) Execute(statement string, args ...any) (*Rows, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.connectLocked(); err != nil {
		return nil, err
	}
	statement, args, err := bindNamed(statement, args, p.engine.backslashEscapes)
	if err != nil {
		return nil, storageErr("execute", err)
	}

	if len(args) > 0 && p.engine.dollarPlaceholders {
		statement = numberPlaceholders(statement)
	}

	ctx := context.Background()
	var q querier = p.conn.Conn
	if p.opts.TxMode() == Manual {
		tx, err := p.pendingLocked(ctx)
		if err != nil {
			return nil, storageErr("begin", err)
		}
		q = tx.Tx
	}

	start := time.Now()
	var rows *Rows
	if returnsRows(statement) {
		var rs *sql.Rows
		rs, err = q.QueryContext(ctx, statement, args...)
		if err == nil {
			rows, err = collectRows(rs)
		}
	} else {
		var res sql.Result
		res, err = q.ExecContext(ctx, statement, args...)
		if err == nil {
			rows = resultRows(res)
		}
	}
	if err != nil {
		return nil, storageErr("execute", err)
	}
	dbLogf("db: execute %q took %s", abbreviate(statement, 80), time.Since(start))
	return rows, nil
}

func (p *sqlProxy) ExecuteScript(script string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.connectLocked(); err != nil {
		return err
	}
	stmts, err := prepareScript(script, p.engine.backslashEscapes)
	if err != nil {
		return err
	}
	if len(stmts) == 0 {
		return nil
	}
	ctx := context.Background()
	start := time.Now()
	if p.tx != nil {
		if err := p.scriptInSavepoint(ctx, *p.tx, stmts); err != nil {
			return err
		}
	} else {
		tx, err := p.conn.BeginTx(ctx, nil)
		if err != nil {
			return storageErr("begin", err)
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s.text); err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					dbLogf("db: rollback after failed script statement %d: %v", s.index+1, rbErr)
				}
				return &SchemaError{Index: s.index, Statement: s.text, Err: err}
			}
		}
		if err := tx.Commit(); err != nil {
			return storageErr("commit", err)
		}
	}
	dbLogf("db: script of %d statements applied in %s", len(stmts), time.Since(start))
	return nil
}

// scriptInSavepoint runs a script inside the pending Manual-mode transaction
// so that a failure discards only the script, not earlier pending work.
func (p *sqlProxy) scriptInSavepoint(ctx context.Context, tx bun.Tx, stmts []scriptStatement) error {
	p.savepoints++
	name := fmt.Sprintf("scaffold_script_%d", p.savepoints)
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return storageErr("savepoint", err)
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.text); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
				dbLogf("db: rollback to savepoint %s: %v", name, rbErr)
			}
			_, _ = tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
			return &SchemaError{Index: s.index, Statement: s.text, Err: err}
		}
	}
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return storageErr("release savepoint", err)
	}
	return nil
}
