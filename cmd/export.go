package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/dashboard"
	"github.com/pable/go-defense-metrics/internal/model"
	"github.com/pable/go-defense-metrics/internal/report"
)

var (
	exportTeam   string
	exportGame   string
	exportFormat string
	exportOut    string
)

// summaryJSON is one exported summary row.
type summaryJSON struct {
	SeasonID   *int64         `json:"season_id"`
	GameID     *int64         `json:"game_id"`
	PlayerID   *int64         `json:"player_id"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	GameDate   string         `json:"game_date"`
	OffTeam    string         `json:"off_team"`
	DefTeam    string         `json:"def_team"`
	Game       string         `json:"game"`
	Counts     map[string]int `json:"counts"`
	Scores     map[string]int `json:"scores"`
	TotalCount int            `json:"total_count"`
	TotalScore int            `json:"total_score"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the game summary as CSV or JSON",
	Long: `Write the merged game summary for the current --team/--game selection.
Counts and scores are keyed by each category's summary suffix (bhr_def,
scr_def, iso, closeout). Missing ids are written as empty (CSV) or null (JSON).

All Games is only offered with All Teams, so --team without --game exports the
team's newest game. Omit both flags to export every team and game.

Example:
  defmetrics export --team NYK --game 22300101 --format json --out nyk.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	addSelectionFlags(exportCmd, &exportTeam, &exportGame)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(exportTeam, exportGame)
	if err != nil {
		return err
	}
	sum, err := dashboard.GameSummary(s)
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case "csv":
		data, err = encodeSummaryCSV(sum.Categories, sum.Table)
	case "json":
		data, err = encodeSummaryJSON(sum.Categories, sum.Table)
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}
	if err != nil {
		return err
	}

	if exportOut == "" {
		fmt.Print(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d rows)\n", exportOut, len(sum.Table.Rows))
	return nil
}

func encodeSummaryCSV(cats []config.CategoryConfig, t model.SummaryTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := append([]string{"SeasonKey", "GameKey", "PlayerKey"}, report.SummaryHeader(cats)...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("encode CSV: %w", err)
	}
	for _, r := range t.Rows {
		rec := append([]string{csvInt(r.Key.SeasonID), csvInt(r.Key.GameID), csvInt(r.Key.PlayerID)},
			report.SummaryRecord(cats, r)...)
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("encode CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func csvInt(n model.NullInt) string {
	if !n.Valid {
		return ""
	}
	return n.String()
}

func jsonInt(n model.NullInt) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int
	return &v
}

func encodeSummaryJSON(cats []config.CategoryConfig, t model.SummaryTable) ([]byte, error) {
	out := make([]summaryJSON, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := summaryJSON{
			SeasonID:   jsonInt(r.Key.SeasonID),
			GameID:     jsonInt(r.Key.GameID),
			PlayerID:   jsonInt(r.Key.PlayerID),
			FirstName:  r.Key.FirstName,
			LastName:   r.Key.LastName,
			GameDate:   r.Key.GameDate,
			OffTeam:    r.Key.OffTeam,
			DefTeam:    r.Key.DefTeam,
			Game:       model.GameLabel(r.Key.GameDate, r.Key.OffTeam),
			Counts:     make(map[string]int, len(cats)),
			Scores:     make(map[string]int, len(cats)),
			TotalCount: r.TotalCount,
			TotalScore: r.TotalScore,
		}
		for _, c := range cats {
			key := c.SummarySuffix
			if key == "" {
				key = string(c.Name)
			}
			row.Counts[key] = r.Count(c.Name)
			row.Scores[key] = r.Score(c.Name)
		}
		out = append(out, row)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}
