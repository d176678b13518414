package server

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/fiberscope/internal/platform"
)

// cacheEntry holds a page snapshot with its capture time.
type cacheEntry struct {
	snap      *platform.Snapshot
	timestamp time.Time
}

// SnapshotCache provides a TTL-based cache of page snapshots keyed by
// target id. Read-only tools share snapshots through it.
type SnapshotCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSnapshotCache creates a new cache. A ttl of 0 disables caching.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Snapshot returns the cached snapshot for target if within TTL, otherwise
// captures a fresh one from reader.
func (c *SnapshotCache) Snapshot(ctx context.Context, target string, reader platform.PageReader) (*platform.Snapshot, error) {
	if c.ttl == 0 {
		return reader.Snapshot(ctx)
	}

	c.mu.Lock()
	if entry, ok := c.entries[target]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		snap := entry.snap
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	snap, err := reader.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[target] = cacheEntry{snap: snap, timestamp: c.now()}
	c.mu.Unlock()

	return snap, nil
}

// Invalidate removes the entry for target.
func (c *SnapshotCache) Invalidate(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, target)
}

// InvalidateAll clears the entire cache.
func (c *SnapshotCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
