// Package storage persists Places enrichment results between runs, so
// re-running enrichment does not re-bill API lookups for addresses that
// were already resolved.
package storage

import (
	"context"
	"sync"

	"github.com/civicdatadog/civicmap/pkg/errors"
	"github.com/civicdatadog/civicmap/pkg/registry"
)

// Cache stores enrichment results keyed by normalized address.
type Cache interface {
	// Get returns the cached result for key, or errors.ErrNotFound.
	Get(ctx context.Context, key string) (*registry.Places, error)

	// Put stores or replaces the result for key.
	Put(ctx context.Context, key string, places *registry.Places) error

	// Len returns the number of cached entries.
	Len(ctx context.Context) (int, error)

	// Close releases cache resources.
	Close() error
}

// MemoryCache is an in-process Cache for tests and cacheless runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]registry.Places
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]registry.Places)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*registry.Places, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, errors.NewNotFoundError("cache entry", key)
	}
	out := entry
	return &out, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, key string, places *registry.Places) error {
	if key == "" {
		return errors.NewValidationError("key", key, "cannot be empty")
	}
	if places == nil {
		return errors.NewValidationError("places", nil, "cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *places
	return nil
}

// Len implements Cache.
func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Close implements Cache.
func (c *MemoryCache) Close() error { return nil }
