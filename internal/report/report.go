package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/drilldown"
	"github.com/pable/go-defense-metrics/internal/filter"
	"github.com/pable/go-defense-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func anys(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// PrintSelection prints the one-line caption for the global selection.
func PrintSelection(w io.Writer, sel model.Selection) {
	fmt.Fprintf(w, "\nTeam: %s  |  Game: %s\n\n", sel.Team, sel.GameLabel)
}

// SummaryHeader returns the summary column names: identity columns, then
// count_/score_ per category in cats order, then the totals.
func SummaryHeader(cats []config.CategoryConfig) []string {
	h := []string{"DEFENDER", "GAME", "TEAM"}
	for _, c := range cats {
		h = append(h, "COUNT_"+strings.ToUpper(suffix(c)), "SCORE_"+strings.ToUpper(suffix(c)))
	}
	return append(h, "TOTAL_COUNT", "TOTAL_SCORE")
}

// SummaryRecord renders one summary row in SummaryHeader order.
func SummaryRecord(cats []config.CategoryConfig, r model.SummaryRow) []string {
	rec := []string{r.Key.DefenderName(), model.GameLabel(r.Key.GameDate, r.Key.OffTeam), r.Key.DefTeam}
	for _, c := range cats {
		rec = append(rec, strconv.Itoa(r.Count(c.Name)), strconv.Itoa(r.Score(c.Name)))
	}
	return append(rec, strconv.Itoa(r.TotalCount), strconv.Itoa(r.TotalScore))
}

func suffix(c config.CategoryConfig) string {
	if c.SummarySuffix != "" {
		return c.SummarySuffix
	}
	return string(c.Name)
}

// PrintSummary prints the merged per-defender-per-game table.
func PrintSummary(w io.Writer, cats []config.CategoryConfig, t model.SummaryTable) {
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header(anys(SummaryHeader(cats))...)
	for _, r := range t.Rows {
		table.Append(anys(SummaryRecord(cats, r))...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%s rows)\n", humanize.Comma(int64(len(t.Rows))))
}

// PrintDefenderSummary prints per-defender outcome counts and shares.
func PrintDefenderSummary(w io.Writer, countLabel string, rows []model.DefenderOutcome) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	if countLabel == "" {
		countLabel = "total"
	}
	table := newTable(w)
	table.Header("DEFENDER", strings.ToUpper(countLabel), "GOOD", "NEUTRAL", "BAD", "OTHER", "GOOD%", "NEUTRAL%", "BAD%")
	for _, d := range rows {
		table.Append(
			d.Defender,
			strconv.Itoa(d.Total),
			strconv.Itoa(d.Good),
			strconv.Itoa(d.Neutral),
			strconv.Itoa(d.Bad),
			strconv.Itoa(d.Other),
			pct(d.Pct(d.Good)),
			pct(d.Pct(d.Neutral)),
			pct(d.Pct(d.Bad)),
		)
	}
	table.Render()
}

func pct(f float64) string { return fmt.Sprintf("%.0f%%", 100*f) }

// PrintFilters lists each dimension's options with the selected ones marked.
func PrintFilters(w io.Writer, dims []filter.Dimension, res filter.Result) {
	for _, d := range dims {
		selected := make(map[string]bool)
		for _, v := range res.Selections[d.Name] {
			selected[v] = true
		}
		opts := res.Options[d.Name]
		parts := make([]string, len(opts))
		for i, o := range opts {
			if selected[o] {
				parts[i] = "[" + o + "]"
			} else {
				parts[i] = o
			}
		}
		fmt.Fprintf(w, "  %-10s (%s): %s\n", d.Label, d.Name, strings.Join(parts, ", "))
		if pruned := res.Pruned[d.Name]; len(pruned) > 0 {
			fmt.Fprintf(w, "  %-10s dropped stale: %s\n", "", strings.Join(pruned, ", "))
		}
	}
}

// PrintDrillRows prints the drilldown matches.
func PrintDrillRows(w io.Writer, subtypeLabel string, rows []drilldown.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	if subtypeLabel == "" {
		subtypeLabel = "subtype"
	}
	table := newTable(w)
	table.Header("PLAYER", "OUTCOME", strings.ToUpper(subtypeLabel), "CHANCE_ID")
	for _, r := range rows {
		table.Append(r.Player, r.Outcome, r.Subtype, r.ChanceID)
	}
	table.Render()
}

// PrintDrillIDs prints the distinct chance ids, one per line.
func PrintDrillIDs(w io.Writer, res drilldown.Result) {
	fmt.Fprintf(w, "%s distinct chance ids\n", humanize.Comma(int64(len(res.IDs))))
	if len(res.IDs) > 0 {
		fmt.Fprintln(w, res.Text())
	}
}

// PrintTeams lists the team options, marking the selected one.
func PrintTeams(w io.Writer, teams []string, sel model.Selection) {
	for _, t := range teams {
		marker := " "
		if t == sel.Team {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %s\n", marker, t)
	}
}

// PrintGames prints the game options, marking the selected one.
func PrintGames(w io.Writer, games []model.Game, sel model.Selection) {
	if len(games) == 0 {
		fmt.Fprintln(w, "(no games)")
		return
	}
	table := newTable(w)
	table.Header(" ", "GAME ID", "GAME")
	for _, g := range games {
		marker := " "
		if g.ID == sel.GameID {
			marker = ">"
		}
		table.Append(marker, g.ID, g.Label)
	}
	table.Render()
}

// PrintTrend prints a defender's game-by-game totals, newest first.
func PrintTrend(w io.Writer, cats []config.CategoryConfig, t model.SummaryTable) {
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, "(no games)")
		return
	}
	header := []string{"GAME", "TEAM"}
	for _, c := range cats {
		header = append(header, strings.ToUpper(suffix(c)))
	}
	header = append(header, "TOTAL", "SCORE")

	table := newTable(w)
	table.Header(anys(header)...)
	for _, r := range t.Rows {
		rec := []string{model.GameLabel(r.Key.GameDate, r.Key.OffTeam), r.Key.DefTeam}
		for _, c := range cats {
			rec = append(rec, fmt.Sprintf("%d (%+d)", r.Count(c.Name), r.Score(c.Name)))
		}
		rec = append(rec, strconv.Itoa(r.TotalCount), fmt.Sprintf("%+d", r.TotalScore))
		table.Append(anys(rec)...)
	}
	table.Render()
}

// PrintRaw prints the result of an ad-hoc query.
func PrintRaw(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header(anys(cols)...)
	for _, row := range rows {
		table.Append(anys(row)...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%s rows)\n", humanize.Comma(int64(len(rows))))
}
