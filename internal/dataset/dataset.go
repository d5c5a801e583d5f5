// Package dataset binds a loaded table to a category schema, producing typed
// events and an explicit record of which expected columns are absent.
package dataset

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/loader"
	"github.com/pable/go-defense-metrics/internal/model"
)

// Presence records which optional columns a category source actually has.
type Presence struct {
	Outcome bool
	EventID bool
	Chance  bool
	Subtype bool
	NavType bool
	Game    bool // date and opponent columns both present
}

// Dataset is one category's typed events.
type Dataset struct {
	Category model.Category
	Schema   config.CategoryConfig
	Events   []model.Event
	Has      Presence

	// MissingKey lists composite-key columns absent from the source. When
	// non-empty the category cannot be joined and aggregates to nothing.
	MissingKey []string
}

// KeyComplete reports whether every composite-key column was present.
func (d *Dataset) KeyComplete() bool { return len(d.MissingKey) == 0 }

// Bind converts t into events according to schema and the shared key columns.
func Bind(t *loader.Table, schema config.CategoryConfig, key config.KeyColumns, log *zap.Logger) *Dataset {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dataset{
		Category: schema.Name,
		Schema:   schema,
		Events:   []model.Event{},
	}

	playerCol := key.PlayerID
	if !t.Has(playerCol) && schema.PlayerKeyFallback != "" && t.Has(schema.PlayerKeyFallback) {
		playerCol = schema.PlayerKeyFallback
	}

	season, okSeason := t.Column(key.SeasonID)
	game, okGame := t.Column(key.GameID)
	player, okPlayer := t.Column(playerCol)
	first, okFirst := t.Column(key.FirstName)
	last, okLast := t.Column(key.LastName)
	date, okDate := t.Column(key.GameDate)
	off, okOff := t.Column(key.OffTeam)
	def, okDef := t.Column(key.DefTeam)

	for _, m := range []struct {
		name string
		ok   bool
	}{
		{key.SeasonID, okSeason}, {key.GameID, okGame}, {key.PlayerID, okPlayer},
		{key.FirstName, okFirst}, {key.LastName, okLast}, {key.GameDate, okDate},
		{key.OffTeam, okOff}, {key.DefTeam, okDef},
	} {
		if !m.ok {
			d.MissingKey = append(d.MissingKey, m.name)
		}
	}
	if len(d.MissingKey) > 0 {
		log.Warn("category source is missing composite key columns",
			zap.String("category", string(schema.Name)),
			zap.Strings("missing", d.MissingKey))
	}

	outcome, okOutcome := t.Column(schema.OutcomeColumn)
	eventID, okEventID := t.Column(schema.EventIDColumn)
	chance, okChance := t.Column(schema.ChanceColumn)
	subtype, okSubtype := t.Column(schema.SubtypeColumn)
	nav, okNav := t.Column(schema.NavTypeColumn)
	d.Has = Presence{
		Outcome: okOutcome,
		EventID: okEventID,
		Chance:  okChance,
		Subtype: okSubtype,
		NavType: okNav,
		Game:    okDate && okOff,
	}

	var nameCols []*loader.Column
	for _, name := range schema.DefenderNameColumns {
		if c, ok := t.Column(name); ok {
			nameCols = append(nameCols, c)
		}
	}
	if len(nameCols) != len(schema.DefenderNameColumns) && len(nameCols) > 1 {
		nameCols = nameCols[:1]
	}

	d.Events = make([]model.Event, t.Rows)
	for i := 0; i < t.Rows; i++ {
		e := &d.Events[i]
		e.Key = model.CompositeKey{
			SeasonID:  intAt(season, i),
			GameID:    intAt(game, i),
			PlayerID:  intAt(player, i),
			FirstName: textAt(first, i),
			LastName:  textAt(last, i),
			GameDate:  textAt(date, i),
			OffTeam:   textAt(off, i),
			DefTeam:   textAt(def, i),
		}
		e.GameKey = textAt(game, i)
		if d.Has.Game {
			e.Game = model.GameLabel(e.Key.GameDate, e.Key.OffTeam)
		} else {
			e.Game = model.UnknownGame
		}
		e.Defender = defenderName(nameCols, i, e.Key)
		e.Outcome = textAt(outcome, i)
		e.EventID = textAt(eventID, i)
		e.ChanceID = textAt(chance, i)
		e.Subtype = textAt(subtype, i)
		e.NavType = textAt(nav, i)
	}
	return d
}

func defenderName(cols []*loader.Column, i int, key model.CompositeKey) string {
	switch len(cols) {
	case 0:
		return key.DefenderName()
	case 1:
		return textAt(cols[0], i)
	}
	return strings.TrimSpace(textAt(cols[0], i) + " " + textAt(cols[1], i))
}

// textAt returns the trimmed cell text, "" for an absent column.
func textAt(c *loader.Column, i int) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text[i])
}

// intAt returns the cell as a nullable integer, coercing columns the loader
// left as text so every category produces keys of the same type.
func intAt(c *loader.Column, i int) model.NullInt {
	if c == nil {
		return model.NullInt{}
	}
	if c.Kind == loader.KindID {
		return c.Ints[i]
	}
	return loader.ParseNullInt(c.Text[i])
}
