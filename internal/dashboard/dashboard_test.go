package dashboard

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/drilldown"
	"github.com/pable/go-defense-metrics/internal/filter"
	"github.com/pable/go-defense-metrics/internal/loader"
	"github.com/pable/go-defense-metrics/internal/model"
	"github.com/pable/go-defense-metrics/internal/session"
	"github.com/pable/go-defense-metrics/internal/storage"
)

const picksCSV = `SeasonKey,GameKey,DPlayerKey,firstName,lastName,game_date,OTeamAbbrev,DTeamAbbrev,BallHandlerDefenderName,pick_defense_outcome,PickKey,scr_def_type,chance_id
2024,101,7,Ann,Lee,2024-01-05,bos,NYK,Ann Lee,good,p1,drop,c1
2024,101,7,Ann,Lee,2024-01-05,bos,NYK,Ann Lee,good,p2,drop,c2
2024,101,7,Ann,Lee,2024-01-05,bos,NYK,Ann Lee,bad,p3,switch,c3
2024,102,8,Bo,Kim,2024-02-10,mia,NYK,Bo Kim,neutral,p4,drop,c4
2024,103,9,Cy,Ng,2024-03-01,nyk,BOS,Cy Ng,bad,p5,hedge,c5
`

const isoCSV = `SeasonKey,GameKey,PlayerKey,firstName,lastName,game_date,OTeamAbbrev,DTeamAbbrev,drive_label,DriveKey,chance_id
2024,101,7,Ann,Lee,2024-01-05,bos,NYK,good,d1,i1
2024,101,7,Ann,Lee,2024-01-05,bos,NYK,Good,d1,i2
2024,102,10,Di,Po,2024-02-10,mia,NYK,bad,d2,i3
2024,103,7,Ann,Lee,2024-03-01,nyk,BOS,bad,d3,i4
`

// screens lacks the defense team column, so it cannot join.
const screensCSV = `SeasonKey,GameKey,PlayerKey,firstName,lastName,game_date,OTeamAbbrev,drive_label,DriveKey,chance_id
2024,101,7,Ann,Lee,2024-01-05,bos,good,d9,s1
`

const closeoutsCSV = `SeasonKey,GameKey,PlayerKey,firstName,lastName,game_date,OTeamAbbrev,DTeamAbbrev,drive_label,DriveKey,chance_id
`

func newSession(t *testing.T) *session.Session {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"picks_defended_test.csv":     picksCSV,
		"iso_defended_test.csv":       isoCSV,
		"scr_defended_test.csv":       screensCSV,
		"closeouts_defended_test.csv": closeoutsCSV,
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644))
	}
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	s, err := session.New(cfg, nil)
	require.NoError(t, err)
	return s
}

func defenders(rows []model.SummaryRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key.DefenderName() + "/" + r.Key.GameID.String()
	}
	return out
}

func TestGameSummary_AllTeams(t *testing.T) {
	s := newSession(t)
	sum, err := GameSummary(s)
	require.NoError(t, err)

	assert.Equal(t, []model.Category{"closeouts", "iso", "picks", "screens"}, sum.Table.Categories)
	assert.Equal(t, []string{"Ann Lee/101", "Bo Kim/102", "Di Po/102", "Ann Lee/103", "Cy Ng/103"},
		defenders(sum.Table.Rows))

	ann := sum.Table.Rows[0]
	assert.Equal(t, 3, ann.Count(model.CategoryPicks))
	assert.Equal(t, 1, ann.Score(model.CategoryPicks))
	assert.Equal(t, 1, ann.Count(model.CategoryIso), "distinct drive ids")
	assert.Equal(t, 2, ann.Score(model.CategoryIso))
	assert.Equal(t, 0, ann.Count(model.CategoryScreens), "schema mismatch contributes zeros")
	assert.Equal(t, 0, ann.Count(model.CategoryCloseouts))
	assert.Equal(t, 4, ann.TotalCount)
	assert.Equal(t, 3, ann.TotalScore)

	for _, r := range sum.Table.Rows {
		assert.Len(t, r.Counts, 4)
		assert.Len(t, r.Scores, 4)
	}
}

func TestGameSummary_FollowsSelection(t *testing.T) {
	s := newSession(t)
	s.Registry.SetSelection("NYK", "101")

	sum, err := GameSummary(s)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{Team: "NYK", GameID: "101", GameLabel: "2024-01-05 vs BOS"}, sum.Selection)
	assert.Equal(t, []string{"Ann Lee/101"}, defenders(sum.Table.Rows))
}

func TestGameSummary_MissingSource(t *testing.T) {
	s := newSession(t)
	require.NoError(t, os.Remove(s.Config.ResolvePath("closeouts_defended_test.csv")))

	_, err := GameSummary(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, loader.ErrSourceUnavailable))
}

func TestTrend(t *testing.T) {
	s := newSession(t)
	tr, err := Trend(s, " ann lee ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann Lee/103", "Ann Lee/101"}, defenders(tr.Table.Rows))

	s.Registry.SetSelection("NYK", "102")
	tr, err = Trend(s, "Ann Lee")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann Lee/101"}, defenders(tr.Table.Rows), "team applies, game does not")
}

func TestGames(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, []string{model.AllTeams, "BOS", "NYK"}, Teams(s))

	s.Registry.SetTeam("NYK")
	assert.Equal(t, []model.Game{
		{ID: "102", Label: "2024-02-10 vs MIA"},
		{ID: "101", Label: "2024-01-05 vs BOS"},
	}, Games(s))
}

func TestPage_AllGamesHasNoDrill(t *testing.T) {
	s := newSession(t)
	p, err := Page(s, model.CategoryPicks, drilldown.All())
	require.NoError(t, err)

	assert.Nil(t, p.Drill)
	assert.NotEmpty(t, p.DrillUnavailable)
	assert.Len(t, p.Filter.Events, 5)

	names := make([]string, len(p.Dimensions))
	for i, d := range p.Dimensions {
		names[i] = d.Name
	}
	assert.Equal(t, []string{filter.Defender, filter.Game, filter.Subtype}, names)
	assert.Equal(t, "Def Type", p.Dimensions[2].Label)
	assert.Equal(t, []string{"2024-03-01 vs NYK", "2024-02-10 vs MIA", "2024-01-05 vs BOS"}, p.Filter.Options[filter.Game])
}

func TestPage_ScopedDefenderSummaryAndDrill(t *testing.T) {
	s := newSession(t)
	s.Registry.SetSelection("NYK", "101")

	p, err := Page(s, model.CategoryPicks, drilldown.Selectors{Player: "Ann Lee", Outcome: "GOOD", Subtype: "bogus"})
	require.NoError(t, err)

	require.Len(t, p.Defenders, 1)
	assert.Equal(t, model.DefenderOutcome{Defender: "Ann Lee", Total: 3, Good: 2, Bad: 1}, p.Defenders[0])

	require.NotNil(t, p.Drill)
	assert.Equal(t, drilldown.Selectors{Player: "Ann Lee", Outcome: "good", Subtype: model.AllValue}, p.Drill.Selectors)
	assert.Equal(t, []string{"c1", "c2"}, p.Drill.Result.IDs)
	assert.Equal(t, []string{model.AllValue, "drop", "switch"}, p.Drill.Subtypes)
}

func TestPage_PrunesStoredFilters(t *testing.T) {
	s := newSession(t)
	s.SetFilter(model.CategoryPicks, filter.Subtype, []string{"hedge", "drop"})
	s.Registry.SetSelection("NYK", "101")

	p, err := Page(s, model.CategoryPicks, drilldown.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"drop"}, p.Filter.Selections[filter.Subtype])
	assert.Equal(t, []string{"drop"}, s.Filters(model.CategoryPicks)[filter.Subtype], "pruned state is stored")
	assert.Len(t, p.Filter.Events, 2)
}

func TestPage_DefenderFilterIsShared(t *testing.T) {
	s := newSession(t)
	s.SetFilter(model.CategoryPicks, filter.Defender, []string{"Ann Lee"})

	p, err := Page(s, model.CategoryIso, drilldown.All())
	require.NoError(t, err)
	assert.Len(t, p.Filter.Events, 3)
	for _, e := range p.Filter.Events {
		assert.Equal(t, "Ann Lee", e.Defender)
	}
	assert.False(t, p.Has.Subtype)
}

func TestPage_UnknownCategory(t *testing.T) {
	s := newSession(t)
	_, err := Page(s, model.Category("rebounds"), drilldown.All())
	assert.Error(t, err)
}

func TestScope(t *testing.T) {
	events := []model.Event{
		{Key: model.CompositeKey{DefTeam: "NYK"}, GameKey: "101"},
		{Key: model.CompositeKey{DefTeam: "NYK"}, GameKey: "102"},
		{Key: model.CompositeKey{DefTeam: "BOS"}, GameKey: "101"},
	}
	assert.Len(t, Scope(events, model.Selection{Team: model.AllTeams, GameID: model.AllGames}), 3)
	assert.Len(t, Scope(events, model.Selection{Team: "NYK", GameID: model.AllGames}), 2)
	assert.Len(t, Scope(events, model.Selection{Team: model.AllTeams, GameID: "101"}), 2)
	assert.Len(t, Scope(events, model.Selection{Team: "NYK", GameID: "102"}), 1)
	assert.Empty(t, Scope(nil, model.Selection{Team: "NYK", GameID: "102"}))
}

func TestMirror(t *testing.T) {
	s := newSession(t)
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Mirror(s, db))
	counts, err := db.CountEvents()
	require.NoError(t, err)
	assert.Equal(t, 5, counts[model.CategoryPicks])
	assert.Equal(t, 4, counts[model.CategoryIso])
	assert.Equal(t, 1, counts[model.CategoryScreens])
	assert.Zero(t, counts[model.CategoryCloseouts])

	_, rows, err := db.QueryRaw(`SELECT SUM(good) FROM events WHERE category = 'iso'`)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2"}}, rows)
}
