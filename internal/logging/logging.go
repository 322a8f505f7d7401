// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/scaffold/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures L (and the charmbracelet default logger, which library
// packages log through) from c. When c.File is set, records go to stderr
// and to a RotatingFile; the returned Closer closes that file.
func Setup(c config.Log) (io.Closer, error) {
	level := clog.InfoLevel
	if c.Level != "" {
		lv, err := clog.ParseLevel(strings.ToLower(c.Level))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", c.Level, err)
		}
		level = lv
	}
	formatter, err := parseFormatter(c.Format)
	if err != nil {
		return nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		rf, err := OpenRotatingFile(c.File, RotateOptions{
			MaxBytes:    c.MaxBytes,
			BackupCount: c.BackupCount,
			When:        c.When,
			Interval:    c.Interval,
			Compress:    c.Compress,
		})
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stderr, rf)
		closer = rf
	}

	L = New(out, level, formatter)
	clog.SetDefault(L)
	return closer, nil
}

// New builds a logger in the application's record layout.
func New(w io.Writer, level clog.Level, formatter clog.Formatter) *clog.Logger {
	return clog.NewWithOptions(w, clog.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

func parseFormatter(s string) (clog.Formatter, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return clog.TextFormatter, nil
	case "json":
		return clog.JSONFormatter, nil
	case "logfmt":
		return clog.LogfmtFormatter, nil
	default:
		return clog.TextFormatter, fmt.Errorf("unknown log format %q", s)
	}
}
