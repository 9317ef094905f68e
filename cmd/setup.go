package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/barfriedman1/FDA-drug-recall/internal/cache"
	"github.com/barfriedman1/FDA-drug-recall/internal/config"
	"github.com/barfriedman1/FDA-drug-recall/internal/openfda"
	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
)

func newLogger(w io.Writer, cfg *config.Config, noColor bool) *slog.Logger {
	level := cfg.Level()
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}))
}

// openLogFile opens the dashboard log in append mode, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// pipeline is the fetch, categorize and cache chain every command reads from.
type pipeline struct {
	db     *cache.Cache
	loader *cache.Loader
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	db, err := cache.Open()
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	client := openfda.NewClient(cfg.Endpoint, cfg.Limit, cfg.TimeoutDuration(), openfda.WithLogger(logger))
	return &pipeline{
		db:     db,
		loader: cache.NewLoader(db, client, cfg.RefreshDuration(), logger),
	}, nil
}

func (p *pipeline) Close() error {
	return p.db.Close()
}

func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	filter, err := recall.ParseFilter(flagClass)
	if err != nil {
		return nil, "", fmt.Errorf("invalid --class value: %w", err)
	}
	return cfg, filter, nil
}
