// Package config loads the switchboard configuration stored at
// ~/.switchboard/config.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDir  = ".switchboard"
	DefaultFile = "config.yml"
)

// Environment overrides.
const (
	EnvConfigPath = "SWITCHBOARD_CONFIG"
	EnvBackendURL = "SWITCHBOARD_BACKEND_URL"
	EnvLogLevel   = "SWITCHBOARD_LOG_LEVEL"
)

type Config struct {
	BackendURL string        `yaml:"backend_url" default:"http://localhost:5000" validate:"required,url"`
	PageSize   int           `yaml:"page_size" default:"10" validate:"min=1,max=100"`
	BadgeDelay time.Duration `yaml:"badge_delay" default:"300ms" validate:"min=0"`
	LogFile    string        `yaml:"log_file" default:"~/.switchboard/switchboard.log" validate:"required"`
	LogLevel   string        `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Path returns the config file location, honouring SWITCHBOARD_CONFIG.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return expandHome(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, DefaultDir, DefaultFile), nil
}

// Load reads the config from the default location. A missing file yields
// the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, applies defaults and environment
// overrides, and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.LogFile, err = expandHome(cfg.LogFile); err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the defaults with paths left unexpanded, as written by
// `switchboard init`.
func Default() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	return cfg
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
