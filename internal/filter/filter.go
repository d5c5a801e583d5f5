// Package filter computes cascading multi-select filter options: each
// dimension's options are the values left after applying every other
// dimension's selection, and selections that fall out of their options are
// pruned until the whole set is consistent.
package filter

import (
	"sort"
	"strings"

	"github.com/pable/go-defense-metrics/internal/model"
)

// Dimension names used by the dashboard pages.
const (
	Defender = "defender"
	Game     = "game"
	Subtype  = "subtype"
	NavType  = "navtype"
)

// Dimension is one filterable attribute of an event.
type Dimension struct {
	Name  string
	Label string
	Value func(model.Event) string

	// Descending sorts options newest-first; used for game labels.
	Descending bool
}

// Selections maps a dimension name to its selected values. An empty or
// missing entry applies no filter.
type Selections map[string][]string

// Clone returns a deep copy.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Apply keeps the events matching every non-empty selection. Selections for
// names not in dims are ignored.
func Apply(events []model.Event, dims []Dimension, sel Selections) []model.Event {
	type active struct {
		dim Dimension
		set map[string]bool
	}
	var filters []active
	for _, d := range dims {
		vals := sel[d.Name]
		if len(vals) == 0 {
			continue
		}
		set := make(map[string]bool, len(vals))
		for _, v := range vals {
			set[v] = true
		}
		filters = append(filters, active{dim: d, set: set})
	}

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		keep := true
		for _, f := range filters {
			if !f.set[strings.TrimSpace(f.dim.Value(e))] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

// OptionsFor returns the sorted distinct non-empty values of dimension name
// among the events that pass every other dimension's selection. The
// dimension's own selection never narrows its options.
func OptionsFor(events []model.Event, dims []Dimension, name string, sel Selections) []string {
	var target *Dimension
	for i := range dims {
		if dims[i].Name == name {
			target = &dims[i]
			break
		}
	}
	if target == nil {
		return []string{}
	}

	others := make(Selections, len(sel))
	for k, v := range sel {
		if k != name {
			others[k] = v
		}
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, e := range Apply(events, dims, others) {
		v := strings.TrimSpace(target.Value(e))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if target.Descending {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	} else {
		sort.Strings(out)
	}
	return out
}

// Prune drops selected values absent from valid, keeping the order of the rest.
func Prune(selection, valid []string) []string {
	ok := make(map[string]bool, len(valid))
	for _, v := range valid {
		ok[v] = true
	}
	out := []string{}
	for _, v := range selection {
		if ok[v] {
			out = append(out, v)
		}
	}
	return out
}

// Result is a consistent filter state for one page.
type Result struct {
	Options    map[string][]string
	Selections Selections
	Pruned     map[string][]string // values removed from each dimension
	Events     []model.Event       // events passing all selections
}

// Resolve recomputes every dimension's options from events and prunes stale
// selections, one dimension at a time in dims order. Pruning one dimension can
// change the options of the others, so passes repeat until none changes.
// Selections only shrink, so this terminates.
func Resolve(events []model.Event, dims []Dimension, sel Selections) Result {
	cur := make(Selections, len(dims))
	for _, d := range dims {
		cur[d.Name] = append([]string{}, sel[d.Name]...)
	}
	res := Result{Pruned: map[string][]string{}}

	for {
		changed := false
		options := make(map[string][]string, len(dims))
		for _, d := range dims {
			opts := OptionsFor(events, dims, d.Name, cur)
			options[d.Name] = opts
			kept := Prune(cur[d.Name], opts)
			if len(kept) != len(cur[d.Name]) {
				changed = true
				res.Pruned[d.Name] = append(res.Pruned[d.Name], removed(cur[d.Name], kept)...)
			}
			cur[d.Name] = kept
		}
		if !changed {
			res.Options = options
			break
		}
	}

	res.Selections = cur
	res.Events = Apply(events, dims, cur)
	return res
}

func removed(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, v := range after {
		kept[v] = true
	}
	var out []string
	for _, v := range before {
		if !kept[v] {
			out = append(out, v)
		}
	}
	return out
}
