// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// New returns a disconnected Proxy for opts. The concrete type depends on
// the options type; an unknown Options implementation is an ErrConfig.
func New(opts Options) (Proxy, error) {
	switch o := opts.(type) {
	case SqliteOptions:
		return NewSqliteProxy(o), nil
	case *SqliteOptions:
		return NewSqliteProxy(*o), nil
	case PostgresOptions:
		return NewPostgresProxy(o), nil
	case *PostgresOptions:
		return NewPostgresProxy(*o), nil
	case MySQLOptions:
		return NewMySQLProxy(o), nil
	case *MySQLOptions:
		return NewMySQLProxy(*o), nil
	case nil:
		return nil, configErr(nil, "no options given")
	default:
		return nil, configErr(nil, "unsupported options type %T", opts)
	}
}
