package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/drilldown"
	"github.com/pable/go-defense-metrics/internal/filter"
	"github.com/pable/go-defense-metrics/internal/model"
	"github.com/pable/go-defense-metrics/internal/report"
)

var (
	pageTeam      string
	pageGame      string
	pageDefenders []string
	pageGames     []string
	pageSubtypes  []string
	pageNavTypes  []string
	pageDrill     drilldown.Selectors
	pageIDsOnly   bool
)

var pageCmd = &cobra.Command{
	Use:   "page <category>",
	Short: "Show one category page: filters, defender summary and drilldown",
	Long: `Show a category page (picks, screens, iso, closeouts). Filter selections that
are no longer offered by the current team, game and other filters are dropped.
The drilldown needs a specific --game.`,
	Args: cobra.ExactArgs(1),
	RunE: runPage,
}

func init() {
	addSelectionFlags(pageCmd, &pageTeam, &pageGame)
	pageCmd.Flags().StringSliceVar(&pageDefenders, "defender", nil, "defender names to keep")
	pageCmd.Flags().StringSliceVar(&pageGames, "game-label", nil, `game labels to keep ("2024-01-05 vs BOS")`)
	pageCmd.Flags().StringSliceVar(&pageSubtypes, "subtype", nil, "play subtypes to keep")
	pageCmd.Flags().StringSliceVar(&pageNavTypes, "navtype", nil, "navigation types to keep")
	pageCmd.Flags().StringVar(&pageDrill.Player, "drill-player", model.AllValue, "drilldown player")
	pageCmd.Flags().StringVar(&pageDrill.Outcome, "drill-outcome", model.AllValue, "drilldown outcome")
	pageCmd.Flags().StringVar(&pageDrill.Subtype, "drill-subtype", model.AllValue, "drilldown subtype")
	pageCmd.Flags().BoolVar(&pageIDsOnly, "ids", false, "print only the drilldown chance ids")
}

func runPage(cmd *cobra.Command, args []string) error {
	cat := model.Category(strings.ToLower(args[0]))
	s, err := openSession(pageTeam, pageGame)
	if err != nil {
		return err
	}
	for dim, vals := range map[string][]string{
		filter.Defender: pageDefenders,
		filter.Game:     pageGames,
		filter.Subtype:  pageSubtypes,
		filter.NavType:  pageNavTypes,
	} {
		if len(vals) > 0 {
			s.SetFilter(cat, dim, vals)
		}
	}

	p, err := dashboard.Page(s, cat, pageDrill)
	if err != nil {
		return err
	}
	if pageIDsOnly {
		if p.Drill == nil {
			return fmt.Errorf("drilldown unavailable: %s", p.DrillUnavailable)
		}
		report.PrintDrillIDs(os.Stdout, p.Drill.Result)
		return nil
	}
	printPage(os.Stdout, p)
	return nil
}

func printPage(w io.Writer, p *dashboard.PageResult) {
	fmt.Fprintf(w, "\n=== %s ===\n", p.Category.Title)
	report.PrintSelection(w, p.Selection)

	fmt.Fprintf(w, "--- Filters ---\n\n")
	report.PrintFilters(w, p.Dimensions, p.Filter)

	fmt.Fprintf(w, "\n--- Defender Summary ---\n\n")
	report.PrintDefenderSummary(w, p.Category.CountLabel, p.Defenders)

	fmt.Fprintf(w, "\n--- Drilldown ---\n\n")
	if p.Drill == nil {
		fmt.Fprintf(w, "(%s)\n", p.DrillUnavailable)
		return
	}
	d := p.Drill
	fmt.Fprintf(w, "  player=%s  outcome=%s  %s=%s\n\n",
		d.Selectors.Player, d.Selectors.Outcome, subtypeName(p), d.Selectors.Subtype)
	report.PrintDrillRows(w, p.Category.SubtypeLabel, d.Result.Rows)
	fmt.Fprintln(w)
	report.PrintDrillIDs(w, d.Result)
}

func subtypeName(p *dashboard.PageResult) string {
	if p.Category.SubtypeLabel != "" {
		return strings.ToLower(p.Category.SubtypeLabel)
	}
	return "subtype"
}
