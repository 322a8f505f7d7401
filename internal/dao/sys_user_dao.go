// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/scaffold/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

const sysUserColumns = "id, username, password, email, phone, role_id, status, avatar"

// SysUserDao reads and writes sys_user.
type SysUserDao struct {
	base
}

// NewSysUserDao builds a DAO on the proxy registered under
// config.DBGlobalName in the context's scope.
func NewSysUserDao(ctx context.Context) (*SysUserDao, error) {
	b, err := baseFrom(ctx)
	if err != nil {
		return nil, err
	}
	return &SysUserDao{base: b}, nil
}

// NewSysUserDaoWithProxy builds a DAO on an explicit proxy.
func NewSysUserDaoWithProxy(p db.Proxy) *SysUserDao {
	return &SysUserDao{base: base{proxy: p}}
}

func scanUser(r db.Row) (SysUser, error) {
	id, err := r.Int64("id")
	if err != nil {
		return SysUser{}, err
	}
	status, err := r.Int64("status")
	if err != nil {
		return SysUser{}, err
	}
	return SysUser{
		ID:       id,
		Username: r.String("username"),
		Password: r.String("password"),
		Email:    r.String("email"),
		Phone:    r.String("phone"),
		RoleID:   r.String("role_id"),
		Status:   int(status),
		Avatar:   r.String("avatar"),
	}, nil
}

// GetAllUsers returns every user ordered by id.
func (d *SysUserDao) GetAllUsers() ([]SysUser, error) {
	rows, err := d.proxy.Execute("SELECT " + sysUserColumns + " FROM sys_user ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]SysUser, 0, rows.Len())
	for r := range rows.All() {
		u, err := scanUser(r)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// GetByUsername returns ErrNotFound when no user has that name.
func (d *SysUserDao) GetByUsername(username string) (*SysUser, error) {
	rows, err := d.proxy.Execute("SELECT "+sysUserColumns+" FROM sys_user WHERE username = :username",
		sql.Named("username", username))
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	if !rows.Next() {
		return nil, ErrNotFound
	}
	u, err := scanUser(rows.Row())
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &u, nil
}

// Create stores u with its plain-text Password hashed. Missing role and
// status get their defaults. A taken username yields db.ErrDuplicate.
func (d *SysUserDao) Create(u SysUser) (*SysUser, error) {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" || u.Password == "" {
		return nil, ErrEmptyCredentials
	}
	if u.RoleID == "" {
		u.RoleID = DefaultRole
	}
	if u.Status == 0 {
		u.Status = StatusActive
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	_, err = d.proxy.Execute(
		"INSERT INTO sys_user (username, password, email, phone, role_id, status, avatar) "+
			"VALUES (:username, :password, :email, :phone, :role_id, :status, :avatar)",
		sql.Named("username", u.Username),
		sql.Named("password", string(hash)),
		sql.Named("email", u.Email),
		sql.Named("phone", u.Phone),
		sql.Named("role_id", u.RoleID),
		sql.Named("status", u.Status),
		sql.Named("avatar", u.Avatar),
	)
	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", u.Username, db.MapDBError(err))
	}
	// LastInsertID is not available on every backend; read the row back.
	return d.GetByUsername(u.Username)
}

// Authenticate checks a username/password pair.
func (d *SysUserDao) Authenticate(username, password string) (*SysUser, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	u, err := d.GetByUsername(username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active() {
		return nil, ErrUserDisabled
	}
	return u, nil
}

// SetStatus enables or disables an account.
func (d *SysUserDao) SetStatus(username string, status int) error {
	res, err := d.proxy.Execute("UPDATE sys_user SET status = ? WHERE username = ?", status, username)
	if err != nil {
		return fmt.Errorf("set status of %q: %w", username, err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. It returns ErrNotFound when nothing was deleted.
func (d *SysUserDao) Delete(username string) error {
	res, err := d.proxy.Execute("DELETE FROM sys_user WHERE username = ?", username)
	if err != nil {
		return fmt.Errorf("delete user %q: %w", username, err)
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
