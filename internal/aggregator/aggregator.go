package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-defense-metrics/internal/dataset"
	"github.com/pable/go-defense-metrics/internal/model"
)

// ScoreOutcome maps an outcome label to its (good, bad) score pair:
// good is 1 for "good", bad is -1 for "bad", both are 0 otherwise.
func ScoreOutcome(outcome string) (good, bad int) {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case model.OutcomeGood:
		return 1, 0
	case model.OutcomeBad:
		return 0, -1
	}
	return 0, 0
}

// Score attaches the good/bad score columns to every event.
func Score(events []model.Event) []model.ScoredEvent {
	out := make([]model.ScoredEvent, len(events))
	for i, e := range events {
		g, b := ScoreOutcome(e.Outcome)
		out[i] = model.ScoredEvent{Event: e, Good: g, Bad: b}
	}
	return out
}

// Aggregate groups scored events by composite key. Count is the number of
// distinct non-empty event ids in the group; groups appear in first-seen order.
func Aggregate(category model.Category, events []model.ScoredEvent) model.AggregateTable {
	type group struct {
		row model.AggregateRow
		ids map[string]struct{}
	}
	index := make(map[model.CompositeKey]int)
	groups := []group{}

	for _, e := range events {
		i, ok := index[e.Key]
		if !ok {
			i = len(groups)
			index[e.Key] = i
			groups = append(groups, group{
				row: model.AggregateRow{Key: e.Key},
				ids: make(map[string]struct{}),
			})
		}
		g := &groups[i]
		if e.EventID != "" {
			g.ids[e.EventID] = struct{}{}
		}
		g.row.GoodSum += e.Good
		g.row.BadSum += e.Bad
	}

	out := model.AggregateTable{Category: category, Rows: make([]model.AggregateRow, len(groups))}
	for i, g := range groups {
		g.row.Count = len(g.ids)
		g.row.Score = g.row.GoodSum + g.row.BadSum
		out.Rows[i] = g.row
	}
	return out
}

// AggregateDataset scores and aggregates one category. A category whose source
// lacks composite-key columns aggregates to an empty table, so it contributes
// zeros to the merge instead of failing it.
func AggregateDataset(d *dataset.Dataset) model.AggregateTable {
	if !d.KeyComplete() {
		return model.AggregateTable{Category: d.Category, Rows: []model.AggregateRow{}}
	}
	return Aggregate(d.Category, Score(d.Events))
}

// Merge full-outer-joins the aggregate tables on the composite key. Every key
// appears once, with a zero count and score for each category it is absent from.
// The result does not depend on the order of tables.
func Merge(tables ...model.AggregateTable) model.SummaryTable {
	sorted := make([]model.AggregateTable, len(tables))
	copy(sorted, tables)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Category < sorted[j].Category })

	var cats []model.Category
	for _, t := range sorted {
		if len(cats) == 0 || cats[len(cats)-1] != t.Category {
			cats = append(cats, t.Category)
		}
	}

	index := make(map[model.CompositeKey]int)
	rows := []model.SummaryRow{}
	for _, t := range sorted {
		for _, ar := range t.Rows {
			i, ok := index[ar.Key]
			if !ok {
				i = len(rows)
				index[ar.Key] = i
				r := model.SummaryRow{
					Key:    ar.Key,
					Counts: make(map[model.Category]int, len(cats)),
					Scores: make(map[model.Category]int, len(cats)),
				}
				for _, c := range cats {
					r.Counts[c] = 0
					r.Scores[c] = 0
				}
				rows = append(rows, r)
			}
			rows[i].Counts[t.Category] += ar.Count
			rows[i].Scores[t.Category] += ar.Score
		}
	}

	for i := range rows {
		for _, c := range cats {
			rows[i].TotalCount += rows[i].Counts[c]
			rows[i].TotalScore += rows[i].Scores[c]
		}
	}
	return model.SummaryTable{Categories: cats, Rows: rows}
}

// SortSummary orders rows by total count then total score, both descending.
// Ties keep their input order.
func SortSummary(rows []model.SummaryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalCount != rows[j].TotalCount {
			return rows[i].TotalCount > rows[j].TotalCount
		}
		return rows[i].TotalScore > rows[j].TotalScore
	})
}

// FilterSummary keeps rows matching the global selection: team against the
// defense team, game against the integer game key. Sentinels match everything.
// A game id that is not an integer matches nothing.
func FilterSummary(t model.SummaryTable, sel model.Selection) model.SummaryTable {
	out := model.SummaryTable{Categories: t.Categories, Rows: []model.SummaryRow{}}
	team := strings.TrimSpace(sel.Team)
	for _, r := range t.Rows {
		if !sel.AllTeams() && r.Key.DefTeam != team {
			continue
		}
		if !sel.AllGames() && r.Key.GameID.String() != strings.TrimSpace(sel.GameID) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}
