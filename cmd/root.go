package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/barfriedman1/FDA-drug-recall/internal/recall"
	"github.com/barfriedman1/FDA-drug-recall/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig      string
	flagClass       string
	flagDebug       bool
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "recallviz",
	Short: "Terminal dashboard for FDA drug recalls",
	Long: `recallviz fetches drug recall enforcement reports from openFDA, groups the
recall reasons into a handful of categories, and charts them by severity
classification and by year.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagClass, "class", recall.All, "initial classification filter (all, 1, 2, 3, \"Class II\", ...)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sourceCmd)
}

var (
	flagCheck  bool
	releaseURL = update.ReleasesURL
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "recallviz %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}
		res, err := update.Check(cmd.Context(), releaseURL, version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(out, "Up to date.")
			return nil
		}
		fmt.Fprintf(out, "Update available: %s %s\n", res.LatestVersion, res.URL)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
