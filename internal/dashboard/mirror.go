package dashboard

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/aggregator"
	"github.com/pable/go-defense-metrics/internal/dataset"
	"github.com/pable/go-defense-metrics/internal/session"
	"github.com/pable/go-defense-metrics/internal/storage"
)

// Mirror loads every category through the session cache and writes its scored
// events into db.
func Mirror(s *session.Session, db *storage.DB) error {
	sets, err := dataset.LoadAll(s.Cache, s.Config, s.Logger())
	if err != nil {
		return fmt.Errorf("mirror events: %w", err)
	}
	for _, d := range sets {
		if err := db.InsertEvents(d.Category, aggregator.Score(d.Events)); err != nil {
			return fmt.Errorf("mirror %s: %w", d.Category, err)
		}
		s.Logger().Debug("mirrored category", zap.String("category", d.Category.String()), zap.Int("events", len(d.Events)))
	}
	return nil
}
