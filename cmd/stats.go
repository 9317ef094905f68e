package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/barfriedman1/FDA-drug-recall/internal/cache"
)

var flagStatsSample int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Fetch once and print record counts",
	Long: `Fetch and categorize the enforcement reports, then print how many records
fall under each classification, category and year. --sample lists the first
records of the --class selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, filter, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cmd.ErrOrStderr(), cfg, false)
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
		if err := writeStats(cmd.OutOrStdout(), p.db, snap); err != nil {
			return err
		}
		if flagStatsSample > 0 {
			return writeSample(cmd.OutOrStdout(), p.db, filter, flagStatsSample)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&flagStatsSample, "sample", 0, "also list the first N records of the --class selection")
}

func writeStats(w io.Writer, db *cache.Cache, snap *cache.Snapshot) error {
	if !db.Loaded() {
		return fmt.Errorf("no recall dataset in the cache")
	}
	count, err := db.Count()
	if err != nil {
		return fmt.Errorf("counting records: %w", err)
	}
	fmt.Fprintf(w, "Records: %d", count)
	if snap.Total > 0 {
		fmt.Fprintf(w, " of %d", snap.Total)
	}
	fmt.Fprintln(w)
	if snap.LastUpdated != "" {
		fmt.Fprintf(w, "Last updated: %s\n", snap.LastUpdated)
	}

	for _, group := range []struct{ title, column string }{
		{"Classification", "classification"},
		{"Reason", "reason"},
		{"Year", "year"},
	} {
		counts, err := db.CountBy(group.column)
		if err != nil {
			return fmt.Errorf("counting by %s: %w", group.column, err)
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, formatCounts(group.title, counts))
	}
	return nil
}

func writeSample(w io.Writer, db *cache.Cache, filter string, n int) error {
	records, err := db.Records(cache.QueryOpts{Classification: filter, Limit: n})
	if err != nil {
		return fmt.Errorf("reading sample: %w", err)
	}
	fmt.Fprintf(w, "\nSample (%s, first %d):\n", filter, n)
	for _, r := range records {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", r.Year, r.Classification, r.Reason, r.Product)
	}
	return nil
}

// formatCounts lists counts largest first, ties by key.
func formatCounts(title string, counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	width := 0
	for k := range counts {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := title + ":\n"
	for _, k := range keys {
		out += fmt.Sprintf("  %-*s %6d\n", width, k, counts[k])
	}
	return out
}
