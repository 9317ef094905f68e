package cmd

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/barfriedman1/FDA-drug-recall/internal/config"
	"github.com/barfriedman1/FDA-drug-recall/internal/metrics"
	"github.com/barfriedman1/FDA-drug-recall/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, filter, err := loadConfig()
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so logs go to a file.
	logFile, err := openLogFile(config.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg, true)

	addr := cfg.MetricsAddr
	if flagMetricsAddr != "" {
		addr = flagMetricsAddr
	}
	if addr != "" {
		srv := metrics.NewServer(addr)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("metrics server", "addr", addr, "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Stop(ctx)
		}()
		logger.Info("serving metrics", "addr", addr)
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}

	return tui.Run(tui.RunOpts{
		Loader:   p.loader,
		Timeout:  cfg.TimeoutDuration() + 5*time.Second,
		TopN:     cfg.GetTopN(),
		Filter:   filter,
		Logger:   logger,
		Markdown: tui.GlamourMarkdown(style),
	})
}
