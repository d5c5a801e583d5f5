package model

import "strconv"

// Sentinel values meaning "no filter applied" for a dimension.
const (
	AllTeams = "All Teams"
	AllGames = "All Games"
	AllValue = "(All)"
)

// UnknownGame labels events whose source has no date or opponent column.
const UnknownGame = "UNKNOWN"

// Canonical outcome labels.
const (
	OutcomeGood    = "good"
	OutcomeNeutral = "neutral"
	OutcomeBad     = "bad"
)

// CanonicalOutcome reports whether s is one of good, neutral or bad (exact, lower-case).
func CanonicalOutcome(s string) bool {
	switch s {
	case OutcomeGood, OutcomeNeutral, OutcomeBad:
		return true
	}
	return false
}

// Category identifies one play-type data source.
type Category string

const (
	CategoryPicks     Category = "picks"
	CategoryIso       Category = "iso"
	CategoryScreens   Category = "screens"
	CategoryCloseouts Category = "closeouts"
)

func (c Category) String() string { return string(c) }

// NullInt is an integer that can be missing. The zero value is missing.
type NullInt struct {
	Int   int64
	Valid bool
}

// IntOf returns a present NullInt.
func IntOf(v int64) NullInt { return NullInt{Int: v, Valid: true} }

func (n NullInt) String() string {
	if !n.Valid {
		return "<NA>"
	}
	return strconv.FormatInt(n.Int, 10)
}

// ---- Raw events produced by the dataset binder ----

// CompositeKey identifies one defender's participation in one game.
// It is comparable and used directly as a map key; missing components
// group together rather than being dropped.
type CompositeKey struct {
	SeasonID  NullInt
	GameID    NullInt
	PlayerID  NullInt
	FirstName string
	LastName  string
	GameDate  string
	OffTeam   string
	DefTeam   string
}

// DefenderName is "first last", trimmed when either part is empty.
func (k CompositeKey) DefenderName() string {
	switch {
	case k.FirstName == "":
		return k.LastName
	case k.LastName == "":
		return k.FirstName
	}
	return k.FirstName + " " + k.LastName
}

// Event is one play instance within a category table.
type Event struct {
	Key      CompositeKey
	Defender string // display name built from the category's defender columns
	GameKey  string // trimmed game id text, as written in the source
	Game     string // "YYYY-MM-DD vs OPP" label
	Outcome  string // trimmed, original case
	EventID  string // drive id or pick id; empty when missing
	Subtype  string
	NavType  string
	ChanceID string
}

// ScoredEvent carries the two outcome score columns.
type ScoredEvent struct {
	Event
	Good int // 1 when outcome is good
	Bad  int // -1 when outcome is bad
}

// ---- Aggregated metrics ----

// AggregateRow is one composite key's result within one category.
type AggregateRow struct {
	Key     CompositeKey
	Count   int // distinct event ids
	GoodSum int
	BadSum  int
	Score   int // GoodSum + BadSum
}

// AggregateTable is the output of aggregating one category.
type AggregateTable struct {
	Category Category
	Rows     []AggregateRow
}

// SummaryRow is one composite key merged across categories.
type SummaryRow struct {
	Key        CompositeKey
	Counts     map[Category]int
	Scores     map[Category]int
	TotalCount int
	TotalScore int
}

// Count returns the count for c, zero when the category had no rows for this key.
func (r SummaryRow) Count(c Category) int { return r.Counts[c] }

// Score returns the score for c, zero when the category had no rows for this key.
func (r SummaryRow) Score(c Category) int { return r.Scores[c] }

// SummaryTable is the merged, per-defender-per-game table.
type SummaryTable struct {
	Categories []Category
	Rows       []SummaryRow
}

// DefenderOutcome is one row of a page's defender summary.
type DefenderOutcome struct {
	Defender string
	Total    int
	Good     int
	Neutral  int
	Bad      int
	Other    int // outcomes outside good/neutral/bad
}

// Pct returns n as a fraction of the defender's total, zero when the total is zero.
func (d DefenderOutcome) Pct(n int) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(n) / float64(d.Total)
}

// Game is one selectable game in the global selection.
type Game struct {
	ID    string
	Label string
}

// Selection is the session-wide team/game choice.
type Selection struct {
	Team      string
	GameID    string
	GameLabel string
}

// AllGames reports whether no specific game is selected.
func (s Selection) AllGames() bool { return s.GameID == AllGames }

// AllTeams reports whether no specific team is selected.
func (s Selection) AllTeams() bool { return s.Team == AllTeams }
