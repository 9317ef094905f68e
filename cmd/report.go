package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/barfriedman1/FDA-drug-recall/internal/aggregate"
	"github.com/barfriedman1/FDA-drug-recall/internal/tui"
)

var (
	flagReportWidth int
	flagReportTop   int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch once and print both charts",
	Long: `Fetch the enforcement reports, categorize them and print the badges, the
reason chart and the yearly trend to stdout without starting the dashboard.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&flagReportWidth, "width", 100, "chart width in columns")
	reportCmd.Flags().IntVar(&flagReportTop, "top", 0, "number of reasons to chart (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, filter, err := loadConfig()
	if err != nil {
		return err
	}
	if flagReportWidth < 20 {
		return fmt.Errorf("invalid --width value %d: must be at least 20", flagReportWidth)
	}
	topN := cfg.GetTopN()
	if flagReportTop > 0 {
		topN = flagReportTop
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, cmd.ErrOrStderr() != os.Stderr)
	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration()+5*time.Second)
	defer cancel()
	snap, err := p.loader.Load(ctx, false)
	if err != nil {
		return fmt.Errorf("loading recalls: %w", err)
	}

	v := aggregate.Build(snap.Records, filter, topN)
	writeReport(cmd.OutOrStdout(), v, snap.LastUpdated, flagReportWidth)
	return nil
}

func writeReport(w io.Writer, v aggregate.View, lastUpdated string, width int) {
	var totals []string
	for _, ct := range v.ClassTotals {
		totals = append(totals, fmt.Sprintf("%s: %d", ct.Classification, ct.Count))
	}
	fmt.Fprintln(w, "FDA Drug Recalls Analysis")
	fmt.Fprintf(w, "Filter: %s · Showing %d recalls\n", v.Filter, v.Filtered)
	fmt.Fprintf(w, "Recall Severity Classification: %s\n\n", strings.Join(totals, " · "))
	fmt.Fprintln(w, tui.RenderCharts(v, tui.ChartOpts{
		Width:       width,
		LastUpdated: lastUpdated,
		Markdown:    tui.GlamourMarkdown("notty"),
	}))
}
