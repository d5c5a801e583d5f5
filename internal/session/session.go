// Package session holds the state of one dashboard session: the source cache,
// the global team/game selection, and each page's filter selections.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pable/go-defense-metrics/internal/config"
	"github.com/pable/go-defense-metrics/internal/filter"
	"github.com/pable/go-defense-metrics/internal/loader"
	"github.com/pable/go-defense-metrics/internal/model"
)

// sharedDims are filter dimensions whose selection follows the user from page
// to page instead of being kept per page.
var sharedDims = map[string]bool{
	filter.Defender: true,
}

// Session is one user's dashboard session. It is not safe for concurrent use.
type Session struct {
	ID       uuid.UUID
	Config   *config.Config
	Cache    *loader.Cache
	Registry *Registry

	log    *zap.Logger
	shared filter.Selections
	pages  map[model.Category]filter.Selections
}

// New starts a session: it builds the source cache, loads the master source
// and initializes the global selection. A missing master source is fatal.
func New(cfg *config.Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	log = log.With(zap.String("session", id.String()))

	cache := loader.NewCache(loader.Normalization{
		IDColumns:     cfg.Normalize.IDColumns,
		StringColumns: cfg.Normalize.StringColumns,
	}, log)

	master, err := LoadMaster(cache, cfg)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	reg := NewRegistry(master, log)
	reg.Initialize()

	log.Debug("session started", zap.Int("teams", len(master.Teams())))
	return &Session{
		ID:       id,
		Config:   cfg,
		Cache:    cache,
		Registry: reg,
		log:      log,
		shared:   filter.Selections{},
		pages:    make(map[model.Category]filter.Selections),
	}, nil
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *zap.Logger { return s.log }

// Filters returns a copy of the page's filter selections, shared dimensions included.
func (s *Session) Filters(page model.Category) filter.Selections {
	out := s.pages[page].Clone()
	for k, v := range s.shared {
		out[k] = append([]string{}, v...)
	}
	return out
}

// SetFilter replaces the selection of one dimension on a page.
func (s *Session) SetFilter(page model.Category, dim string, values []string) {
	vals := append([]string{}, values...)
	if sharedDims[dim] {
		s.shared[dim] = vals
		return
	}
	if s.pages[page] == nil {
		s.pages[page] = filter.Selections{}
	}
	s.pages[page][dim] = vals
}

// StoreFilters saves a resolved selection set for a page, replacing what was there.
func (s *Session) StoreFilters(page model.Category, sel filter.Selections) {
	own := filter.Selections{}
	for k, v := range sel {
		if sharedDims[k] {
			s.shared[k] = append([]string{}, v...)
			continue
		}
		own[k] = append([]string{}, v...)
	}
	s.pages[page] = own
}

// ClearFilters drops every selection visible on the page, shared ones included.
func (s *Session) ClearFilters(page model.Category) {
	delete(s.pages, page)
	s.shared = filter.Selections{}
	s.log.Debug("filters cleared", zap.String("page", page.String()))
}
