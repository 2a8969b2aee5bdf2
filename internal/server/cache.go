package server

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mj1618/delphi-cli/internal/bridge"
	"github.com/mj1618/delphi-cli/internal/model"
)

// cacheEntry holds a cached control tree with its timestamp.
type cacheEntry struct {
	controls  []model.Control
	timestamp time.Time
}

// TreeCache provides a TTL-based cache for bridge control trees, keyed by
// bridge path.
type TreeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTreeCache creates a new cache. A ttl of 0 disables caching.
func NewTreeCache(ttl time.Duration) *TreeCache {
	return &TreeCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Controls returns the cached tree for key if within TTL, otherwise calls
// fetch and caches its result. Errors are not cached.
func (c *TreeCache) Controls(key string, fetch func() ([]model.Control, error)) ([]model.Control, error) {
	if c.ttl == 0 {
		return fetch()
	}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		controls := entry.controls
		c.mu.Unlock()
		return controls, nil
	}
	c.mu.Unlock()

	controls, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{controls: controls, timestamp: c.now()}
	c.mu.Unlock()

	return controls, nil
}

// InvalidateAll clears the entire cache. Called after every action that
// may change the UI.
func (c *TreeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// cachedSource serves tree reads through the cache and passes flat
// queries straight to the bridge.
type cachedSource struct {
	client *bridge.Client
	cache  *TreeCache
}

func (s cachedSource) ActiveFormControls(ctx context.Context) ([]model.Control, error) {
	return s.cache.Controls("/activeform/controls", func() ([]model.Control, error) {
		return s.client.ActiveFormControls(ctx)
	})
}

func (s cachedSource) FormControls(ctx context.Context, handle int) ([]model.Control, error) {
	return s.cache.Controls("/forms/"+strconv.Itoa(handle)+"/controls", func() ([]model.Control, error) {
		return s.client.FormControls(ctx, handle)
	})
}

func (s cachedSource) Controls(ctx context.Context, filter model.ControlFilter) ([]model.Control, error) {
	return s.client.Controls(ctx, filter)
}
