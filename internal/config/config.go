package config

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "recallviz"

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Limit           int    `yaml:"limit"`
	Timeout         string `yaml:"timeout"`
	RefreshInterval string `yaml:"refresh_interval"`
	TopN            int    `yaml:"top_n"`
	LogLevel        string `yaml:"log_level"`
	MetricsAddr     string `yaml:"metrics_addr,omitempty"`
}

// TimeoutDuration returns the HTTP timeout, 30s when unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// RefreshDuration returns how long a fetched dataset stays valid. Zero means
// for the rest of the session.
func (c *Config) RefreshDuration() time.Duration {
	if c.RefreshInterval == "" {
		return 0
	}
	// Support "Nd" day syntax
	if len(c.RefreshInterval) > 1 && c.RefreshInterval[len(c.RefreshInterval)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.RefreshInterval, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetTopN returns the number of reasons to chart, defaulting to 8.
func (c *Config) GetTopN() int {
	if c.TopN <= 0 {
		return 8
	}
	return c.TopN
}

// Level maps log_level to a slog level, Info when unrecognised.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// LogPath is where the dashboard writes its log while it owns the terminal.
func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (DefaultConfigPath when empty) over the
// embedded defaults. A .env file in the working directory is loaded first so
// its variables can be referenced as ${VAR} in the YAML.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return cfg, nil
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv sets variables from the env file at name. A missing file is not
// an error; variables already in the environment win.
func loadDotEnv(name string) error {
	if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	return nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint: url scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Limit < 1 || cfg.Limit > 1000 {
		return fmt.Errorf("limit must be between 1 and 1000, got %d", cfg.Limit)
	}
	if cfg.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", cfg.TopN)
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	return nil
}
