// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const backupTimeFormat = "2006-01-02_15-04-05"

// RotateOptions controls when a RotatingFile rolls over and how many
// backups it keeps.
type RotateOptions struct {
	// MaxBytes rotates before a write would grow the file past it. 0 disables.
	MaxBytes int64
	// BackupCount is the number of rotated files kept. 0 keeps all.
	BackupCount int
	// When is the time rotation unit: "s", "m", "h" or "d". Empty disables.
	When     string
	Interval int
	// Compress stores rotated files as zstd (<backup>.zst).
	Compress bool
}

func (o RotateOptions) period() (time.Duration, error) {
	n := o.Interval
	if n <= 0 {
		n = 1
	}
	var unit time.Duration
	switch strings.ToLower(o.When) {
	case "":
		return 0, nil
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d", "midnight":
		unit = 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown rotation unit %q", o.When)
	}
	return time.Duration(n) * unit, nil
}

// RotatingFile is an io.WriteCloser that appends to path and rotates it by
// size and/or age. Rotated files are named <path>.<YYYY-MM-DD_HH-MM-SS>.
type RotatingFile struct {
	path   string
	opts   RotateOptions
	period time.Duration
	now    func() time.Time

	mu       sync.Mutex
	f        *os.File
	size     int64
	rollover time.Time
}

// OpenRotatingFile opens (or creates) path for appending.
func OpenRotatingFile(path string, opts RotateOptions) (*RotatingFile, error) {
	period, err := opts.period()
	if err != nil {
		return nil, err
	}
	r := &RotatingFile{path: path, opts: opts, period: period, now: time.Now}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	r.f, r.size = f, fi.Size()
	if r.period > 0 {
		r.rollover = r.now().Add(r.period)
	}
	return nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return 0, os.ErrClosed
	}
	if r.due(len(p)) {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *RotatingFile) due(n int) bool {
	if r.opts.MaxBytes > 0 && r.size > 0 && r.size+int64(n) > r.opts.MaxBytes {
		return true
	}
	return r.period > 0 && !r.now().Before(r.rollover)
}

// Rotate forces a rollover.
func (r *RotatingFile) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return os.ErrClosed
	}
	return r.rotate()
}

func (r *RotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return err
	}
	r.f = nil
	backup := r.backupName()
	if err := os.Rename(r.path, backup); err != nil {
		return err
	}
	if r.opts.Compress {
		if err := compressFile(backup); err != nil {
			return err
		}
	}
	if err := r.open(); err != nil {
		return err
	}
	return r.prune()
}

func (r *RotatingFile) backupName() string {
	base := r.path + "." + r.now().Format(backupTimeFormat)
	name := base
	for i := 1; exists(name) || exists(name+".zst"); i++ {
		name = fmt.Sprintf("%s.%d", base, i)
	}
	return name
}

// Backups lists rotated files, oldest first.
func (r *RotatingFile) Backups() ([]string, error) {
	matches, err := filepath.Glob(r.path + ".*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (r *RotatingFile) prune() error {
	if r.opts.BackupCount <= 0 {
		return nil
	}
	backups, err := r.Backups()
	if err != nil {
		return err
	}
	for len(backups) > r.opts.BackupCount {
		if err := os.Remove(backups[0]); err != nil && !os.IsNotExist(err) {
			return err
		}
		backups = backups[1:]
	}
	return nil
}

func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func compressFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.OpenFile(path+".zst", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		_ = out.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
