package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/report"
	"github.com/pable/go-defense-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the loaded events",
	Long: `Load every category into an in-memory SQLite database and run an arbitrary
SQL query, printing the result as a table.

Schema:
  events(category, row_idx, season_id, game_id, player_id, first_name, last_name,
    game_date, off_team, def_team, defender, game_label, outcome, event_id,
    subtype, navtype, chance_id, good, bad)

good is 1 for a good outcome, bad is -1 for a bad one. Missing ids are NULL.

Example:
  defmetrics sql "SELECT defender, COUNT(DISTINCT event_id) n, SUM(good+bad) score
    FROM events WHERE category='picks' GROUP BY defender ORDER BY n DESC"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	s, err := openSession("", "")
	if err != nil {
		return err
	}
	db, err := storage.Open(":memory:")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := dashboard.Mirror(s, db); err != nil {
		return err
	}
	if counts, err := db.CountEvents(); err == nil {
		logger.Debug("events loaded", zap.Any("counts", counts))
	}

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	report.PrintRaw(os.Stdout, cols, rows)
	return nil
}
