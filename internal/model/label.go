package model

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when formatting a game date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// FormatGameDate returns the date as YYYY-MM-DD when it parses, else the trimmed raw text.
func FormatGameDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// GameLabel renders "{date} vs {OPPONENT}".
func GameLabel(date, opponent string) string {
	return FormatGameDate(date) + " vs " + strings.ToUpper(strings.TrimSpace(opponent))
}
