package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/barfriedman1/FDA-drug-recall/internal/browser"
	"github.com/barfriedman1/FDA-drug-recall/internal/tui"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Open the openFDA enforcement API page in the browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := browser.Open(tui.DataSourceURL); err != nil {
			return fmt.Errorf("opening %s: %w", tui.DataSourceURL, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tui.DataSourceURL)
		return nil
	},
}
