// Package drilldown narrows a page's events to one player, outcome and
// subtype and collects the chance ids needed to find the plays on video.
package drilldown

import (
	"sort"
	"strings"

	"github.com/pable/go-defense-metrics/internal/model"
)

// Row is one drilldown match.
type Row struct {
	Player   string
	Outcome  string
	Subtype  string
	ChanceID string
}

// Result is the drilldown output. Both slices are non-nil.
type Result struct {
	Rows []Row
	IDs  []string // distinct non-empty chance ids, first-seen order
}

// Text joins the ids one per line.
func (r Result) Text() string { return strings.Join(r.IDs, "\n") }

// Selectors are the three drilldown choices; model.AllValue leaves one unconstrained.
type Selectors struct {
	Player  string
	Outcome string
	Subtype string
}

// All returns selectors that match every event.
func All() Selectors {
	return Selectors{Player: model.AllValue, Outcome: model.AllValue, Subtype: model.AllValue}
}

// Drill returns the events matching sel and their distinct chance ids.
func Drill(events []model.Event, sel Selectors) Result {
	res := Result{Rows: []Row{}, IDs: []string{}}
	seen := make(map[string]bool)
	for _, e := range events {
		if !matchExact(e.Defender, sel.Player) || !matchOutcome(e.Outcome, sel.Outcome) || !matchExact(e.Subtype, sel.Subtype) {
			continue
		}
		id := strings.TrimSpace(e.ChanceID)
		res.Rows = append(res.Rows, Row{
			Player:   strings.TrimSpace(e.Defender),
			Outcome:  strings.TrimSpace(e.Outcome),
			Subtype:  strings.TrimSpace(e.Subtype),
			ChanceID: id,
		})
		if id != "" && !seen[id] {
			seen[id] = true
			res.IDs = append(res.IDs, id)
		}
	}
	return res
}

func unconstrained(sel string) bool {
	s := strings.TrimSpace(sel)
	return s == "" || s == model.AllValue
}

func matchExact(value, sel string) bool {
	if unconstrained(sel) {
		return true
	}
	return strings.TrimSpace(value) == strings.TrimSpace(sel)
}

// matchOutcome compares against a canonical selector (good, neutral, bad)
// ignoring case, and against any other selector as exact trimmed text.
func matchOutcome(value, sel string) bool {
	if unconstrained(sel) {
		return true
	}
	want := strings.TrimSpace(sel)
	if model.CanonicalOutcome(want) {
		return strings.ToLower(strings.TrimSpace(value)) == want
	}
	return strings.TrimSpace(value) == want
}

// PlayerOptions returns "(All)" followed by the sorted distinct defenders.
func PlayerOptions(events []model.Event) []string {
	return withAll(distinct(events, func(e model.Event) string { return e.Defender }))
}

// SubtypeOptions returns "(All)" followed by the sorted distinct subtypes.
func SubtypeOptions(events []model.Event) []string {
	return withAll(distinct(events, func(e model.Event) string { return e.Subtype }))
}

// OutcomeOptions returns "(All)" followed by good, neutral, bad when all three
// occur (ignoring case), else by the sorted distinct raw outcomes.
func OutcomeOptions(events []model.Event) []string {
	raw := distinct(events, func(e model.Event) string { return e.Outcome })
	lower := make(map[string]bool, len(raw))
	for _, v := range raw {
		lower[strings.ToLower(v)] = true
	}
	if lower[model.OutcomeGood] && lower[model.OutcomeNeutral] && lower[model.OutcomeBad] {
		return withAll([]string{model.OutcomeGood, model.OutcomeNeutral, model.OutcomeBad})
	}
	return withAll(raw)
}

func distinct(events []model.Event, value func(model.Event) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, e := range events {
		v := strings.TrimSpace(value(e))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func withAll(opts []string) []string {
	return append([]string{model.AllValue}, opts...)
}
