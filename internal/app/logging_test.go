package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/piecetable/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"Warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"verbose", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if LogLevel(99).String() != "UNKNOWN" {
		t.Errorf("LogLevel(99).String() = %q", LogLevel(99).String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level LogLevel
		shown []string
	}{
		{LogLevelDebug, []string{"debug", "info", "warn", "error"}},
		{LogLevelInfo, []string{"info", "warn", "error"}},
		{LogLevelWarn, []string{"warn", "error"}},
		{LogLevelError, []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&buf, tt.level)
			l.Debug("debug msg")
			l.Info("info msg")
			l.Warn("warn msg")
			l.Error("error msg")

			lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			if len(lines) != len(tt.shown) {
				t.Fatalf("got %d lines, want %d: %q", len(lines), len(tt.shown), buf.String())
			}
			for i, name := range tt.shown {
				if !strings.Contains(lines[i], name+" msg") {
					t.Errorf("line %d = %q, want %s", i, lines[i], name)
				}
			}
		})
	}
}

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogLevelDebug).
		WithField("buffer", "b1").
		WithFields(map[string]any{"script": "fix.lua", "revision": 7}).
		WithComponent("script")

	l.Warn("took %dms", 12)

	line := buf.String()
	if !strings.Contains(line, "[WARN] pted: took 12ms") {
		t.Errorf("line = %q", line)
	}
	if !strings.HasSuffix(line, " {buffer=b1, component=script, revision=7, script=fix.lua}\n") {
		t.Errorf("fields not sorted or missing: %q", line)
	}
}

func TestLogger_DerivedDoesNotTouchParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&buf, LogLevelInfo)
	_ = parent.WithField("script", "a")

	parent.Info("plain")
	if strings.Contains(buf.String(), "{") {
		t.Errorf("parent picked up a child field: %q", buf.String())
	}
}

func TestLogger_ConcurrentChildren(t *testing.T) {
	var buf bytes.Buffer
	root := NewLogger(&buf, LogLevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l := root.WithField("worker", n)
			for j := 0; j < 50; j++ {
				l.Info("line")
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "20") || !strings.HasSuffix(line, "}") {
			t.Fatalf("interleaved line %q", line)
		}
	}
}

func TestNullLogger(t *testing.T) {
	l := NullLogger.WithField("buffer", "b1").WithComponent("script")
	l.Error("discarded")
	if l.sink != nil {
		t.Error("derived null logger has an output")
	}
}

func TestOpenLogger_Fallback(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := OpenLogger(config.LoggingConfig{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("OpenLogger: %v", err)
	}
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestOpenLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pted.log")
	logger, closer, err := OpenLogger(config.LoggingConfig{Level: "debug", File: path}, nil)
	if err != nil {
		t.Fatalf("OpenLogger: %v", err)
	}
	logger.Debug("first")
	logger.Error("second")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("log file missing entries: %q", data)
	}
}

func TestOpenLogger_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "pted.log")
	_, _, err := OpenLogger(config.LoggingConfig{File: path}, nil)

	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError, got %v", err)
	}
	if fe.Path != path {
		t.Errorf("Path = %q, want %q", fe.Path, path)
	}
}
