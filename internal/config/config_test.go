package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.BackendURL != "http://localhost:5000" {
		t.Errorf("unexpected backend url %q", cfg.BackendURL)
	}
	if cfg.PageSize != 10 {
		t.Errorf("expected page size 10, got %d", cfg.PageSize)
	}
	if cfg.BadgeDelay != 300*time.Millisecond {
		t.Errorf("expected 300ms badge delay, got %v", cfg.BadgeDelay)
	}
	if strings.HasPrefix(cfg.LogFile, "~") {
		t.Errorf("expected expanded log path, got %q", cfg.LogFile)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
backend_url: https://backend.example.com/
page_size: 25
badge_delay: 50ms
log_file: /tmp/switchboard-test.log
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.BackendURL != "https://backend.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BackendURL)
	}
	if cfg.PageSize != 25 || cfg.BadgeDelay != 50*time.Millisecond {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != "/tmp/switchboard-test.log" {
		t.Errorf("unexpected logging config: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://10.0.0.5:8080")
	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.BackendURL != "http://10.0.0.5:8080" {
		t.Errorf("expected env backend url, got %q", cfg.BackendURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected warn, got %q", cfg.LogLevel)
	}
}

func TestValidationFailures(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvLogLevel, "")

	cases := map[string]string{
		"page size":  "page_size: 0\n",
		"log level":  "log_level: loud\n",
		"url":        "backend_url: not a url\n",
		"bad syntax": "page_size: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Errorf("expected error for %q", content)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := Default()
	cfg.PageSize = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if loaded.PageSize != 42 {
		t.Errorf("expected page size 42, got %d", loaded.PageSize)
	}
	if loaded.BadgeDelay != 300*time.Millisecond {
		t.Errorf("expected badge delay to survive save, got %v", loaded.BadgeDelay)
	}
}

func TestPathHonoursEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.yml")
	t.Setenv(EnvConfigPath, want)

	got, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}
