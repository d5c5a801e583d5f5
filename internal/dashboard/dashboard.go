// Package dashboard is the query surface behind every view: it loads the
// category tables through the session cache, applies the global selection and
// the page filters, and returns structured results for rendering.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/aggregator"
	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/dataset"
	"github.com/pable/go-defense-metrics/internal/drilldown"
	"github.com/pable/go-defense-metrics/internal/filter"
	"github.com/pable/go-defense-metrics/internal/model"
	"github.com/pable/go-defense-metrics/internal/session"
)

// Summary is the merged per-defender-per-game table for the current selection.
type Summary struct {
	Selection  model.Selection
	Categories []config.CategoryConfig // display order
	Table      model.SummaryTable
}

// GameSummary loads every category, aggregates and merges them, then keeps
// the rows matching the global selection, sorted by total count and score.
func GameSummary(s *session.Session) (*Summary, error) {
	merged, err := mergeAll(s)
	if err != nil {
		return nil, err
	}
	sel := s.Registry.Selection()
	out := aggregator.FilterSummary(merged, sel)
	aggregator.SortSummary(out.Rows)
	return &Summary{Selection: sel, Categories: s.Config.Categories, Table: out}, nil
}

func mergeAll(s *session.Session) (model.SummaryTable, error) {
	sets, err := dataset.LoadAll(s.Cache, s.Config, s.Logger())
	if err != nil {
		return model.SummaryTable{}, fmt.Errorf("game summary: %w", err)
	}
	tables := make([]model.AggregateTable, len(sets))
	for i, d := range sets {
		tables[i] = aggregator.AggregateDataset(d)
	}
	return aggregator.Merge(tables...), nil
}

// Trend returns the defender's merged rows across games, newest first. The
// team selection applies; the game selection does not.
func Trend(s *session.Session, defender string) (*Summary, error) {
	merged, err := mergeAll(s)
	if err != nil {
		return nil, err
	}
	sel := s.Registry.Selection()
	scope := model.Selection{Team: sel.Team, GameID: model.AllGames}
	out := aggregator.FilterSummary(merged, scope)

	want := strings.ToLower(strings.TrimSpace(defender))
	rows := []model.SummaryRow{}
	for _, r := range out.Rows {
		if strings.ToLower(r.Key.DefenderName()) == want {
			rows = append(rows, r)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return model.FormatGameDate(rows[i].Key.GameDate) > model.FormatGameDate(rows[j].Key.GameDate)
	})
	out.Rows = rows
	return &Summary{Selection: scope, Categories: s.Config.Categories, Table: out}, nil
}

// Teams lists the team options, All Teams first.
func Teams(s *session.Session) []string { return s.Registry.Teams() }

// Games lists the game options for the selected team.
func Games(s *session.Session) []model.Game {
	return s.Registry.GamesForTeam(s.Registry.Selection().Team)
}

// Drill is a page's drilldown section.
type Drill struct {
	Selectors drilldown.Selectors // after invalid choices fell back to "(All)"
	Players   []string
	Outcomes  []string
	Subtypes  []string // nil when the category has no subtype column
	Result    drilldown.Result
}

// PageResult is everything one category page shows.
type PageResult struct {
	Category   config.CategoryConfig
	Selection  model.Selection
	Has        dataset.Presence
	Dimensions []filter.Dimension
	Filter     filter.Result
	Defenders  []model.DefenderOutcome

	// Drill is nil unless a specific game is selected and the category has a
	// chance id column; DrillUnavailable then says why.
	Drill            *Drill
	DrillUnavailable string
}

// Page computes one category page. The stored filter selections are resolved
// against the team/game-scoped events, pruned, and saved back to the session.
func Page(s *session.Session, cat model.Category, drill drilldown.Selectors) (*PageResult, error) {
	log := s.Logger()
	d, err := dataset.Load(s.Cache, s.Config, cat, log)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", cat, err)
	}

	sel := s.Registry.Selection()
	scoped := Scope(d.Events, sel)
	dims := Dimensions(d.Schema, d.Has)
	res := filter.Resolve(scoped, dims, s.Filters(cat))
	for name, vals := range res.Pruned {
		log.Debug("pruned stale filter values",
			zap.String("page", cat.String()),
			zap.String("dimension", name),
			zap.Strings("values", vals))
	}
	s.StoreFilters(cat, res.Selections)

	out := &PageResult{
		Category:   d.Schema,
		Selection:  sel,
		Has:        d.Has,
		Dimensions: dims,
		Filter:     res,
		Defenders:  aggregator.DefenderSummary(res.Events),
	}

	switch {
	case sel.AllGames():
		out.DrillUnavailable = "select a specific game to drill down"
	case !d.Has.Chance:
		out.DrillUnavailable = fmt.Sprintf("no %s column in source", d.Schema.ChanceColumn)
	default:
		out.Drill = buildDrill(scoped, d.Has, drill)
	}
	return out, nil
}

func buildDrill(events []model.Event, has dataset.Presence, sel drilldown.Selectors) *Drill {
	dr := &Drill{
		Players:  drilldown.PlayerOptions(events),
		Outcomes: drilldown.OutcomeOptions(events),
	}
	if has.Subtype {
		dr.Subtypes = drilldown.SubtypeOptions(events)
	}
	dr.Selectors = drilldown.Selectors{
		Player:  pick(sel.Player, dr.Players),
		Outcome: pick(sel.Outcome, dr.Outcomes),
		Subtype: pick(sel.Subtype, dr.Subtypes),
	}
	dr.Result = drilldown.Drill(events, dr.Selectors)
	return dr
}

// pick returns choice when it is offered, matching outcomes ignoring case,
// otherwise "(All)".
func pick(choice string, options []string) string {
	c := strings.TrimSpace(choice)
	for _, o := range options {
		if o == c {
			return o
		}
	}
	for _, o := range options {
		if model.CanonicalOutcome(o) && strings.EqualFold(o, c) {
			return o
		}
	}
	return model.AllValue
}

// Scope keeps the events of the selected defense team and game. Sentinels do
// not filter.
func Scope(events []model.Event, sel model.Selection) []model.Event {
	team := strings.TrimSpace(sel.Team)
	game := strings.TrimSpace(sel.GameID)
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !sel.AllTeams() && e.Key.DefTeam != team {
			continue
		}
		if !sel.AllGames() && e.GameKey != game {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Dimensions returns the filter dimensions a category supports, skipping
// those whose column is absent from its source.
func Dimensions(schema config.CategoryConfig, has dataset.Presence) []filter.Dimension {
	dims := []filter.Dimension{
		{Name: filter.Defender, Label: "Defender", Value: func(e model.Event) string { return e.Defender }},
	}
	if has.Game {
		dims = append(dims, filter.Dimension{
			Name: filter.Game, Label: "Game", Descending: true,
			Value: func(e model.Event) string { return e.Game },
		})
	}
	if has.Subtype {
		dims = append(dims, filter.Dimension{
			Name: filter.Subtype, Label: labelOr(schema.SubtypeLabel, "Type"),
			Value: func(e model.Event) string { return e.Subtype },
		})
	}
	if has.NavType {
		dims = append(dims, filter.Dimension{
			Name: filter.NavType, Label: labelOr(schema.NavTypeLabel, "Nav Type"),
			Value: func(e model.Event) string { return e.NavType },
		})
	}
	return dims
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
