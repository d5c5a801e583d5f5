package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/report"
)

var (
	gamesTeam  string
	gamesTeams bool
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the selectable games (or teams with --teams)",
	Args:  cobra.NoArgs,
	RunE:  runGames,
}

func init() {
	gamesCmd.Flags().StringVar(&gamesTeam, "team", "", "defense team code (default: All Teams)")
	gamesCmd.Flags().BoolVar(&gamesTeams, "teams", false, "list teams instead of games")
}

func runGames(cmd *cobra.Command, args []string) error {
	s, err := openSession(gamesTeam, "")
	if err != nil {
		return err
	}
	sel := s.Registry.Selection()
	if gamesTeams {
		report.PrintTeams(os.Stdout, dashboard.Teams(s), sel)
		return nil
	}
	fmt.Fprintf(os.Stdout, "\nGames for %s\n\n", sel.Team)
	report.PrintGames(os.Stdout, dashboard.Games(s), sel)
	return nil
}
