package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/drilldown"
	"github.com/pable/go-defense-metrics/internal/model"
)

func summaryRow() model.SummaryRow {
	return model.SummaryRow{
		Key: model.CompositeKey{
			GameID: model.IntOf(101), FirstName: "Ann", LastName: "Lee",
			GameDate: "2024-01-05", OffTeam: "bos", DefTeam: "NYK",
		},
		Counts:     map[model.Category]int{model.CategoryPicks: 3},
		Scores:     map[model.Category]int{model.CategoryPicks: 1},
		TotalCount: 3,
		TotalScore: 1,
	}
}

func TestSummaryHeaderAndRecord(t *testing.T) {
	cats := config.DefaultConfig().Categories
	wantHeader := []string{
		"DEFENDER", "GAME", "TEAM",
		"COUNT_BHR_DEF", "SCORE_BHR_DEF", "COUNT_SCR_DEF", "SCORE_SCR_DEF",
		"COUNT_ISO", "SCORE_ISO", "COUNT_CLOSEOUT", "SCORE_CLOSEOUT",
		"TOTAL_COUNT", "TOTAL_SCORE",
	}
	if diff := cmp.Diff(wantHeader, SummaryHeader(cats)); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	wantRec := []string{"Ann Lee", "2024-01-05 vs BOS", "NYK", "3", "1", "0", "0", "0", "0", "0", "0", "3", "1"}
	if diff := cmp.Diff(wantRec, SummaryRecord(cats, summaryRow())); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, config.DefaultConfig().Categories, model.SummaryTable{Rows: []model.SummaryRow{summaryRow()}})
	out := buf.String()
	for _, want := range []string{"Ann Lee", "2024-01-05 vs BOS", "(1 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintSummary(&buf, nil, model.SummaryTable{})
	if strings.TrimSpace(buf.String()) != "(no rows)" {
		t.Errorf("empty summary: got %q", buf.String())
	}
}

func TestPrintDefenderSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintDefenderSummary(&buf, "picks", []model.DefenderOutcome{{Defender: "Ann Lee", Total: 4, Good: 1, Neutral: 1, Bad: 2}})
	out := buf.String()
	for _, want := range []string{"PICKS", "Ann Lee", "25%", "50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDefenderSummary_OtherOutcomes(t *testing.T) {
	var buf bytes.Buffer
	PrintDefenderSummary(&buf, "drives", []model.DefenderOutcome{{Defender: "Bo Kim", Total: 5, Good: 1, Neutral: 1, Bad: 2, Other: 1}})
	out := buf.String()
	for _, want := range []string{"DRIVES", "OTHER", "20%", "40%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDrillIDs(t *testing.T) {
	var buf bytes.Buffer
	PrintDrillIDs(&buf, drilldown.Result{IDs: []string{"c1", "c2"}})
	want := "2 distinct chance ids\nc1\nc2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrintTeams(t *testing.T) {
	var buf bytes.Buffer
	PrintTeams(&buf, []string{model.AllTeams, "NYK"}, model.Selection{Team: "NYK"})
	want := "  All Teams\n> NYK\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
