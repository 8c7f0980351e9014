package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "switchboard.log")

	logger, err := New(path, "info")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("request failed", zap.String("op", "list subaccounts"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at info level, got %d: %s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "request failed" || entry["op"] != "list subaccounts" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["logger"] != "switchboard" {
		t.Errorf("expected named logger, got %v", entry["logger"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
