package loader

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded tables for the lifetime of a session, keyed by the
// absolute source path. Failed loads are not cached.
type Cache struct {
	norm Normalization
	log  *zap.Logger

	mu     sync.Mutex
	tables map[string]*Table
	group  singleflight.Group
	misses int
}

// NewCache returns an empty cache applying norm to every table it loads.
func NewCache(norm Normalization, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		norm:   norm,
		log:    log,
		tables: make(map[string]*Table),
	}
}

// Load returns the normalized table for path, reading it at most once.
// Callers must treat the returned table as read-only.
func (c *Cache) Load(path string) (*Table, error) {
	key := sourceKey(path)

	c.mu.Lock()
	if t, ok := c.tables[key]; ok {
		c.mu.Unlock()
		c.log.Debug("source cache hit", zap.String("path", key))
		return t, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		if t, ok := c.tables[key]; ok {
			c.mu.Unlock()
			return t, nil
		}
		c.misses++
		c.mu.Unlock()

		t, err := Load(path, c.norm)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[key] = t
		c.mu.Unlock()
		c.log.Debug("source loaded",
			zap.String("path", key),
			zap.Int("rows", t.Rows),
			zap.Int("columns", len(t.Columns)))
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Misses returns how many times a source was actually read.
func (c *Cache) Misses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses
}

func sourceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
