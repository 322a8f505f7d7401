package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func openWithClock(t *testing.T, path string, opts RotateOptions, c *fakeClock) *RotatingFile {
	t.Helper()
	r, err := OpenRotatingFile(path, opts)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	r.now = c.now
	if r.period > 0 {
		r.rollover = c.t.Add(r.period)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRotatingFile_SizeRollover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := openWithClock(t, path, RotateOptions{MaxBytes: 10}, clk)

	if _, err := r.Write([]byte("12345678\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := r.Write([]byte("abc\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	backup := path + ".2026-01-02_03-04-05"
	b, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("expected backup %s: %v", backup, err)
	}
	if string(b) != "12345678\n" {
		t.Fatalf("backup content = %q", b)
	}
	cur, _ := os.ReadFile(path)
	if string(cur) != "abc\n" {
		t.Fatalf("current content = %q", cur)
	}
}

func TestRotatingFile_OversizedFirstWriteDoesNotRotateEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	r := openWithClock(t, path, RotateOptions{MaxBytes: 4}, &fakeClock{t: time.Now()})
	if _, err := r.Write([]byte("longer than four\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	backups, _ := r.Backups()
	if len(backups) != 0 {
		t.Fatalf("unexpected backups %v", backups)
	}
}

func TestRotatingFile_BackupCountPrunesOldest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)}
	r := openWithClock(t, path, RotateOptions{BackupCount: 2}, clk)

	for i := 0; i < 4; i++ {
		if _, err := r.Write([]byte("line\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		clk.t = clk.t.Add(time.Second)
		if err := r.Rotate(); err != nil {
			t.Fatalf("rotate: %v", err)
		}
	}
	backups, err := r.Backups()
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %v", backups)
	}
	if !strings.HasSuffix(backups[1], "2026-01-02_03-04-04") {
		t.Fatalf("newest backup should survive, got %v", backups)
	}
}

func TestRotatingFile_TimeRollover(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)}
	r := openWithClock(t, path, RotateOptions{When: "h", Interval: 1}, clk)

	_, _ = r.Write([]byte("first\n"))
	clk.t = clk.t.Add(30 * time.Minute)
	_, _ = r.Write([]byte("second\n"))
	if b, _ := r.Backups(); len(b) != 0 {
		t.Fatalf("rotated too early: %v", b)
	}
	clk.t = clk.t.Add(31 * time.Minute)
	_, _ = r.Write([]byte("third\n"))
	b, _ := r.Backups()
	if len(b) != 1 {
		t.Fatalf("expected one backup after an hour, got %v", b)
	}
}

func TestRotatingFile_Compress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := openWithClock(t, path, RotateOptions{Compress: true}, clk)
	_, _ = r.Write([]byte("compress me\n"))
	if err := r.Rotate(); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	backup := path + ".2026-01-02_03-04-05"
	if _, err := os.Stat(backup); !os.IsNotExist(err) {
		t.Fatalf("uncompressed backup should be removed, stat err: %v", err)
	}
	f, err := os.Open(backup + ".zst")
	if err != nil {
		t.Fatalf("open compressed backup: %v", err)
	}
	defer func() { _ = f.Close() }()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	b, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(b) != "compress me\n" {
		t.Fatalf("decompressed = %q", b)
	}
}

func TestRotatingFile_SameSecondBackupsDoNotCollide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := openWithClock(t, path, RotateOptions{}, clk)
	for i := 0; i < 3; i++ {
		_, _ = r.Write([]byte("x\n"))
		if err := r.Rotate(); err != nil {
			t.Fatalf("rotate: %v", err)
		}
	}
	b, _ := r.Backups()
	if len(b) != 3 {
		t.Fatalf("expected 3 distinct backups, got %v", b)
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	r, err := OpenRotatingFile(path, RotateOptions{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = r.Close()
	if _, err := r.Write([]byte("x")); err == nil {
		t.Fatalf("expected error writing to closed file")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestRotateOptions_UnknownUnit(t *testing.T) {
	if _, err := OpenRotatingFile(filepath.Join(t.TempDir(), "a.log"), RotateOptions{When: "w"}); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}
