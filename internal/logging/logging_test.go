package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false", lvl)
		}
	}
	if ValidLevel("trace") {
		t.Error("ValidLevel(trace) = true")
	}
	if !ValidFormat("json") || !ValidFormat("text") {
		t.Error("expected json and text to be valid formats")
	}
	if ValidFormat("xml") {
		t.Error("ValidFormat(xml) = true")
	}
}

func TestNewManager_NoFile(t *testing.T) {
	m, logger := NewManager(Config{Level: "info", Format: "json"})
	if logger == nil {
		t.Fatal("expected logger")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewManager_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cratedig.log")
	m, logger := NewManager(Config{Level: "info", Format: "text", FilePath: path})
	defer m.Close() //nolint:errcheck

	logger.Info("hello from test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestManagerConfig(t *testing.T) {
	cfg := Config{Level: "warn", Format: "text"}
	m, _ := NewManager(cfg)
	defer m.Close() //nolint:errcheck
	if got := m.Config(); got.Level != "warn" || got.Format != "text" {
		t.Errorf("Config() = %+v, want %+v", got, cfg)
	}
}
