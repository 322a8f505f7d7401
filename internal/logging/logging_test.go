package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/toeirei/scaffold/internal/config"
)

func restoreLoggers(t *testing.T) {
	prev, prevDefault := L, clog.Default()
	t.Cleanup(func() {
		L = prev
		clog.SetDefault(prevDefault)
	})
}

func TestSetup_FileOutputAndLevel(t *testing.T) {
	restoreLoggers(t)
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	closer, err := Setup(config.Log{Level: "warn", Format: "logfmt", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hidden 1") {
		t.Fatalf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("missing warn record: %s", out)
	}
}

func TestSetup_RejectsBadValues(t *testing.T) {
	restoreLoggers(t)
	if _, err := Setup(config.Log{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := Setup(config.Log{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestSetup_ReplacesDefaultLogger(t *testing.T) {
	restoreLoggers(t)
	if _, err := Setup(config.Log{Level: "debug"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if clog.Default() != L {
		t.Fatalf("default logger should be L after Setup")
	}
}

func TestNew_JSONRecords(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, clog.InfoLevel, clog.JSONFormatter)
	l.Info("request", "status", 200)
	if !strings.Contains(buf.String(), `"status"`) || !strings.Contains(buf.String(), `"msg":"request"`) {
		t.Fatalf("unexpected json record: %s", buf.String())
	}
}
