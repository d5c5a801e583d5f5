package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/dataset"
	"github.com/pable/go-defense-metrics/internal/loader"
	"github.com/pable/go-defense-metrics/internal/model"
)

// unknownValue stands in for a team or game id when the master source lacks the column.
const unknownValue = "UNKNOWN"

type masterRow struct {
	team string
	game model.Game
}

// Master is the de-duplicated (team, game id, game label) index that the
// global selection enumerates.
type Master struct {
	rows []masterRow
}

// NewMaster builds the index from a loaded master table.
func NewMaster(t *loader.Table, cols config.MasterConfig) *Master {
	team, okTeam := t.Column(cols.TeamColumn)
	game, okGame := t.Column(cols.GameIDColumn)
	date, okDate := t.Column(cols.GameDateColumn)
	opp, okOpp := t.Column(cols.OpponentColumn)

	seen := make(map[masterRow]bool)
	m := &Master{}
	for i := 0; i < t.Rows; i++ {
		r := masterRow{team: unknownValue, game: model.Game{ID: unknownValue}}
		if okTeam {
			r.team = strings.TrimSpace(team.Text[i])
		}
		if okGame {
			r.game.ID = strings.TrimSpace(game.Text[i])
		}
		if okDate && okOpp {
			r.game.Label = model.GameLabel(date.Text[i], opp.Text[i])
		} else {
			r.game.Label = r.game.ID
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		m.rows = append(m.rows, r)
	}
	return m
}

// LoadMaster reads the configured master source. Failure here is fatal for
// the session: without it no team or game can be offered.
func LoadMaster(src dataset.Source, cfg *config.Config) (*Master, error) {
	t, err := src.Load(cfg.ResolvePath(cfg.Master.Source))
	if err != nil {
		return nil, fmt.Errorf("setup: load master source: %w", err)
	}
	return NewMaster(t, cfg.Master), nil
}

// Teams returns the distinct non-empty team codes, sorted.
func (m *Master) Teams() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range m.rows {
		if r.team == "" || seen[r.team] {
			continue
		}
		seen[r.team] = true
		out = append(out, r.team)
	}
	sort.Strings(out)
	return out
}

// GamesForTeam lists the games offered for team, newest label first. For the
// All Teams sentinel every game is listed behind a leading All Games entry;
// for a specific team only the games it defended are listed.
func (m *Master) GamesForTeam(team string) []model.Game {
	all := team == model.AllTeams
	seen := make(map[model.Game]bool)
	games := []model.Game{}
	for _, r := range m.rows {
		if !all && r.team != team {
			continue
		}
		if seen[r.game] {
			continue
		}
		seen[r.game] = true
		games = append(games, r.game)
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].Label > games[j].Label })
	if all {
		games = append([]model.Game{{ID: model.AllGames, Label: model.AllGames}}, games...)
	}
	return games
}
