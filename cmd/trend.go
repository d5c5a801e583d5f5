package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/report"
)

var trendTeam string

var trendCmd = &cobra.Command{
	Use:   "trend <defender name>",
	Short: "Game-by-game counts and scores for one defender, newest first",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendTeam, "team", "", "defense team code (default: All Teams)")
}

func runTrend(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	s, err := openSession(trendTeam, "")
	if err != nil {
		return err
	}
	tr, err := dashboard.Trend(s, name)
	if err != nil {
		return fmt.Errorf("trend %s: %w", name, err)
	}
	if len(tr.Table.Rows) == 0 {
		fmt.Println("no games found")
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n=== %s ===\n", tr.Table.Rows[0].Key.DefenderName())
	report.PrintSelection(os.Stdout, tr.Selection)
	report.PrintTrend(os.Stdout, tr.Categories, tr.Table)
	return nil
}
