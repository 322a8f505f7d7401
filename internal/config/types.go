// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import "path/filepath"

// Config is the process-level configuration.
type Config struct {
	InstancePath string   `mapstructure:"instance_path" yaml:"instance_path"`
	Database     Database `mapstructure:"database" yaml:"database"`
	Server       Server   `mapstructure:"server" yaml:"server"`
	Log          Log      `mapstructure:"log" yaml:"log"`
}

// Database holds the storage proxy options.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	// Mode is "autocommit" or "manual".
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Scope is "process" (one proxy for the process lifetime) or
	// "request" (a proxy per HTTP request, closed at teardown).
	Scope string `mapstructure:"scope" yaml:"scope"`
	// DDLPath and DMLPath override the embedded bootstrap scripts.
	DDLPath string `mapstructure:"ddl_path" yaml:"ddl_path,omitempty"`
	DMLPath string `mapstructure:"dml_path" yaml:"dml_path,omitempty"`
}

// Server configures the HTTP listener and session signing.
type Server struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	SecretKey    string `mapstructure:"secret_key" yaml:"secret_key"`
	SessionHours int    `mapstructure:"session_hours" yaml:"session_hours"`
}

// Log configures the logger and its optional rotating file.
type Log struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	File        string `mapstructure:"file" yaml:"file,omitempty"`
	MaxBytes    int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
	BackupCount int    `mapstructure:"backup_count" yaml:"backup_count"`
	When        string `mapstructure:"when" yaml:"when"`
	Interval    int    `mapstructure:"interval" yaml:"interval"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// Defaults returns the default values keyed the way viper expects.
func Defaults() map[string]any {
	return map[string]any{
		"instance_path":        DefaultInstancePath,
		"database.type":        "sqlite",
		"database.dsn":         filepath.Join(DefaultInstancePath, DefaultDBFile),
		"database.mode":        "autocommit",
		"database.scope":       ScopeProcess,
		"server.addr":          DefaultAddr,
		"server.secret_key":    DefaultSecretKey,
		"server.session_hours": 12,
		"log.level":            "info",
		"log.format":           "text",
		"log.max_bytes":        10 << 20,
		"log.backup_count":     5,
		"log.when":             "d",
		"log.interval":         1,
	}
}
