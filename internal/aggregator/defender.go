package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-defense-metrics/internal/model"
)

// DefenderSummary counts outcomes per defender for a page. Outcome labels are
// compared lower-cased and trimmed. Total counts every row of the defender;
// labels outside good/neutral/bad also count toward Other. Rows are ordered by
// Total then Good, descending.
func DefenderSummary(events []model.Event) []model.DefenderOutcome {
	index := make(map[string]int)
	out := []model.DefenderOutcome{}
	for _, e := range events {
		i, ok := index[e.Defender]
		if !ok {
			i = len(out)
			index[e.Defender] = i
			out = append(out, model.DefenderOutcome{Defender: e.Defender})
		}
		d := &out[i]
		d.Total++
		switch strings.ToLower(strings.TrimSpace(e.Outcome)) {
		case model.OutcomeGood:
			d.Good++
		case model.OutcomeNeutral:
			d.Neutral++
		case model.OutcomeBad:
			d.Bad++
		default:
			d.Other++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Good > out[j].Good
	})
	return out
}
