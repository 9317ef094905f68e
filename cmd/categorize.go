package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/barfriedman1/FDA-drug-recall/internal/categorize"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize REASON...",
	Short: "Print the category a recall reason falls into",
	Long: `Print the canonical category for each reason_for_recall text given as an
argument. Reasons that match no rule are printed unchanged.`,
	Example: `  recallviz categorize "Lack of Assurance of Sterility" "Subpotent: low assay"`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, reason := range args {
			category := categorize.Reason(reason)
			marker := " "
			if !categorize.IsCanonical(category) {
				marker = "?"
			}
			fmt.Fprintf(out, "%s %s\t%s\n", marker, category, strings.TrimSpace(reason))
		}
	},
}
