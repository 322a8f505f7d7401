// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

// Package dao holds the data access objects. A DAO takes its storage proxy
// from the scope carried by the context, so every DAO built for the same
// request or process shares one connection.
package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/db"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrEmptyCredentials rejects a blank username or password.
	ErrEmptyCredentials = errors.New("username or password must not be empty")
	// ErrInvalidCredentials is returned by Authenticate for an unknown user
	// or a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserDisabled is returned by Authenticate for a disabled account.
	ErrUserDisabled = errors.New("user is disabled")
)

type base struct {
	proxy db.Proxy
}

func baseFrom(ctx context.Context) (base, error) {
	p, err := db.FromContext(ctx, config.DBGlobalName)
	if err != nil {
		return base{}, fmt.Errorf("dao: %w", err)
	}
	return base{proxy: p}, nil
}

// Commit commits pending work of a Manual-mode proxy. It is a no-op in
// AutoCommit mode.
func (b base) Commit() error {
	return b.proxy.Commit()
}

// Rollback discards pending work of a Manual-mode proxy.
func (b base) Rollback() error {
	return b.proxy.Rollback()
}
