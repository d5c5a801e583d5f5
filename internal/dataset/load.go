package dataset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/loader"
	"github.com/pable/go-defense-metrics/internal/model"
)

// Source is anything that returns normalized tables by path; *loader.Cache satisfies it.
type Source interface {
	Load(path string) (*loader.Table, error)
}

// Load reads and binds one configured category.
func Load(src Source, cfg *config.Config, name model.Category, log *zap.Logger) (*Dataset, error) {
	schema, ok := cfg.Category(name)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", name)
	}
	t, err := src.Load(cfg.ResolvePath(schema.Source))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return Bind(t, schema, cfg.Key, log), nil
}

// LoadAll reads every configured category in configuration order.
func LoadAll(src Source, cfg *config.Config, log *zap.Logger) ([]*Dataset, error) {
	out := make([]*Dataset, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		d, err := Load(src, cfg, cat.Name, log)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
