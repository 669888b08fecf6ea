package meta

import (
	"context"
	"fmt"
	"sync"

	"mod-manager/core/gamedata"
	"mod-manager/core/metafile"

	"golang.org/x/sync/singleflight"
)

// BaseProvider fetches raw bytes of base tables from the read-only game data.
type BaseProvider interface {
	FetchTable(ctx context.Context, path gamedata.GamePath) ([]byte, error)
}

// DefaultCache memoizes parsed, unmodified base tables.
// Tables stored here are shared by every build and are never mutated.
type DefaultCache struct {
	provider BaseProvider

	mu     sync.RWMutex
	tables map[TableKey]metafile.Table
	sf     singleflight.Group
}

// NewDefaultCache creates an empty cache backed by provider.
func NewDefaultCache(provider BaseProvider) *DefaultCache {
	return &DefaultCache{
		provider: provider,
		tables:   make(map[TableKey]metafile.Table),
	}
}

// Get returns the cached template for key, fetching and parsing it on first
// use. Failures are not cached so a later call retries.
func (c *DefaultCache) Get(ctx context.Context, key TableKey) (metafile.Table, error) {
	c.mu.RLock()
	table, ok := c.tables[key]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}

	// The shared fetch outlives the caller that started it. Each waiter
	// returns on its own ctx.
	flight := c.sf.DoChan(key.Kind.String()+"|"+key.Path.String(), func() (interface{}, error) {
		c.mu.RLock()
		table, ok := c.tables[key]
		c.mu.RUnlock()
		if ok {
			return table, nil
		}

		data, err := c.provider.FetchTable(context.WithoutCancel(ctx), key.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch base table %s: %w", key.Path, err)
		}
		parsed, err := metafile.Parse(key.Kind, key.Path.String(), data)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.tables[key] = parsed
		c.mu.Unlock()
		return parsed, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(metafile.Table), nil
	}
}

// Len returns the number of cached templates.
func (c *DefaultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}

// Reset drops every cached template.
func (c *DefaultCache) Reset() {
	c.mu.Lock()
	c.tables = make(map[TableKey]metafile.Table)
	c.mu.Unlock()
}
