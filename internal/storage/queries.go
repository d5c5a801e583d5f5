package storage

import (
	"database/sql"
	"fmt"

	"github.com/pable/go-defense-metrics/internal/model"
)

// InsertEvents bulk-inserts one category's scored events in a transaction.
// Rows are keyed by (category, position), so reinserting a category replaces it.
func (db *DB) InsertEvents(category model.Category, events []model.ScoredEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO events(
			category, row_idx, season_id, game_id, player_id,
			first_name, last_name, game_date, off_team, def_team,
			defender, game_label, outcome, event_id, subtype, navtype, chance_id,
			good, bad
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range events {
		k := e.Key
		_, err = stmt.Exec(
			string(category), i, nullInt(k.SeasonID), nullInt(k.GameID), nullInt(k.PlayerID),
			k.FirstName, k.LastName, k.GameDate, k.OffTeam, k.DefTeam,
			e.Defender, e.Game, e.Outcome, e.EventID, e.Subtype, e.NavType, e.ChanceID,
			e.Good, e.Bad,
		)
		if err != nil {
			return fmt.Errorf("insert %s event %d: %w", category, i, err)
		}
	}
	return tx.Commit()
}

// CountEvents returns the number of stored events per category.
func (db *DB) CountEvents() (map[model.Category]int, error) {
	rows, err := db.conn.Query(`SELECT category, COUNT(1) FROM events GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Category]int)
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		out[model.Category(cat)] = n
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns the column names and every row
// rendered as text. NULL becomes the empty string.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func nullInt(n model.NullInt) any {
	if !n.Valid {
		return nil
	}
	return n.Int
}
