package session

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/model"
)

// Registry holds the session's global team/game selection. It is the only
// state shared between otherwise independent page computations; every read
// sees the latest write.
type Registry struct {
	master *Master
	log    *zap.Logger

	set bool
	sel model.Selection
}

// NewRegistry returns an uninitialized registry over master.
func NewRegistry(master *Master, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{master: master, log: log}
}

// Initialize sets the All sentinels when no selection has been made yet.
func (r *Registry) Initialize() {
	if r.set {
		return
	}
	r.sel = model.Selection{Team: model.AllTeams, GameID: model.AllGames, GameLabel: model.AllGames}
	r.set = true
}

// Selection returns the current selection, initializing it first if needed.
func (r *Registry) Selection() model.Selection {
	r.Initialize()
	return r.sel
}

// Teams returns the selectable team options, All Teams first.
func (r *Registry) Teams() []string {
	return append([]string{model.AllTeams}, r.master.Teams()...)
}

// GamesForTeam lists the games offered for team.
func (r *Registry) GamesForTeam(team string) []model.Game {
	return r.master.GamesForTeam(team)
}

// SetSelection validates gameID against the team's games and stores the
// resulting triple in one step. An invalid game falls back to All Games when
// offered, else the team's newest game, else the All Games sentinel.
func (r *Registry) SetSelection(team, gameID string) model.Selection {
	r.Initialize()
	team = strings.TrimSpace(team)
	gameID = strings.TrimSpace(gameID)
	if team == "" {
		team = model.AllTeams
	}

	games := r.master.GamesForTeam(team)
	next := resolveGame(games, gameID)
	next.Team = team

	if next.GameID != gameID {
		r.log.Info("game selection coerced",
			zap.String("team", team),
			zap.String("requested", gameID),
			zap.String("resolved", next.GameID))
	}
	r.sel = next
	return next
}

// SetTeam changes the team and revalidates the current game against it.
func (r *Registry) SetTeam(team string) model.Selection {
	return r.SetSelection(team, r.Selection().GameID)
}

// SetGame changes the game for the current team.
func (r *Registry) SetGame(gameID string) model.Selection {
	return r.SetSelection(r.Selection().Team, gameID)
}

// Reset returns the selection to the All sentinels.
func (r *Registry) Reset() model.Selection {
	r.set = false
	return r.Selection()
}

func resolveGame(games []model.Game, gameID string) model.Selection {
	for _, g := range games {
		if g.ID == gameID {
			return model.Selection{GameID: g.ID, GameLabel: g.Label}
		}
	}
	for _, g := range games {
		if g.ID == model.AllGames {
			return model.Selection{GameID: g.ID, GameLabel: g.Label}
		}
	}
	if len(games) > 0 {
		return model.Selection{GameID: games[0].ID, GameLabel: games[0].Label}
	}
	return model.Selection{GameID: model.AllGames, GameLabel: model.AllGames}
}
