package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/report"
)

var (
	summaryTeam string
	summaryGame string
)

// summaryCmd prints the merged per-defender-per-game table.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the game summary across all categories",
	Long: `Aggregate every category per defender and game, merge them into one table
(zero for categories a defender has no plays in) and sort by total count,
then total score. --team and --game narrow the rows.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	addSelectionFlags(summaryCmd, &summaryTeam, &summaryGame)
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, err := openSession(summaryTeam, summaryGame)
	if err != nil {
		return err
	}
	sum, err := dashboard.GameSummary(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\n=== Game Summary ===\n")
	report.PrintSelection(os.Stdout, sum.Selection)
	report.PrintSummary(os.Stdout, sum.Categories, sum.Table)
	return nil
}
