package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.Endpoint != "https://api.fda.gov/drug/enforcement.json" {
		t.Errorf("unexpected default endpoint %q", cfg.Endpoint)
	}
	if cfg.Limit != 1000 {
		t.Errorf("expected default limit 1000, got %d", cfg.Limit)
	}
	if cfg.TopN != 8 {
		t.Errorf("expected default top_n 8, got %d", cfg.TopN)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestRefreshDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 0},
		{"30m", 30 * time.Minute},
		{"1d", 24 * time.Hour},
		{"12h", 12 * time.Hour},
		{"invalid", 0},
		{"-5m", 0},
	}
	for _, tt := range tests {
		cfg := &Config{RefreshInterval: tt.input}
		if got := cfg.RefreshDuration(); got != tt.want {
			t.Errorf("RefreshDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTimeoutDuration(t *testing.T) {
	cfg := &Config{Timeout: "10s"}
	if d := cfg.TimeoutDuration(); d != 10*time.Second {
		t.Errorf("expected 10s, got %v", d)
	}

	cfg.Timeout = "invalid"
	if d := cfg.TimeoutDuration(); d != 30*time.Second {
		t.Errorf("expected 30s default for invalid timeout, got %v", d)
	}
}

func TestGetTopNDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetTopN(); got != 8 {
		t.Errorf("expected default top_n 8, got %d", got)
	}
	cfg.TopN = 5
	if got := cfg.GetTopN(); got != 5 {
		t.Errorf("expected top_n 5, got %d", got)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.input}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `top_n: 5
refresh_interval: 1h
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TopN != 5 {
		t.Errorf("expected top_n 5, got %d", cfg.TopN)
	}
	if cfg.RefreshDuration() != time.Hour {
		t.Errorf("expected 1h refresh, got %v", cfg.RefreshDuration())
	}
	// Keys missing from the file keep their defaults
	if cfg.Limit != 1000 {
		t.Errorf("expected default limit 1000, got %d", cfg.Limit)
	}
	if cfg.Endpoint == "" {
		t.Error("expected default endpoint to be kept")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("RECALLVIZ_TEST_ENDPOINT", "http://127.0.0.1:9999/drug/enforcement.json")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "endpoint: ${RECALLVIZ_TEST_ENDPOINT}\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "http://127.0.0.1:9999/drug/enforcement.json" {
		t.Errorf("expected expanded endpoint, got %q", cfg.Endpoint)
	}
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limit != 1000 {
		t.Errorf("expected defaults when config doesn't exist, got limit %d", cfg.Limit)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written on first run: %v", err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("limit: 5000\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected error for limit above 1000")
	}
}

func validConfig() *Config {
	return &Config{Endpoint: "https://api.fda.gov/drug/enforcement.json", Limit: 1000, TopN: 8, Timeout: "30s"}
}

func TestValidateInvalidURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Endpoint = "file:///etc/passwd"
	if err := validate(cfg); err == nil {
		t.Error("expected error for file:// URL scheme")
	}
}

func TestValidateAcceptsHTTP(t *testing.T) {
	cfg := validConfig()
	cfg.Endpoint = "http://localhost:8080/drug/enforcement.json"
	if err := validate(cfg); err != nil {
		t.Errorf("unexpected error for http URL: %v", err)
	}
}

func TestValidateLimit(t *testing.T) {
	for _, limit := range []int{0, -1, 1001} {
		cfg := validConfig()
		cfg.Limit = limit
		if err := validate(cfg); err == nil {
			t.Errorf("expected error for limit %d", limit)
		}
	}
}

func TestValidateTopN(t *testing.T) {
	cfg := validConfig()
	cfg.TopN = 0
	if err := validate(cfg); err == nil {
		t.Error("expected error for top_n 0")
	}
}

func TestValidateTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Timeout = "soon"
	if err := validate(cfg); err == nil {
		t.Error("expected error for unparseable timeout")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	const key = "RECALLVIZ_TEST_DOTENV"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", key, got)
	}
}

func TestLoadDotEnvMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("RECALLVIZ_TEST_BROKEN=\"never closed\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	err := loadDotEnv(path)
	if err == nil {
		t.Fatal("expected an error for a malformed .env")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the file, got %v", err)
	}
}
