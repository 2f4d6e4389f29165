package catalog

import (
	"context"
	"sync"
	"sync/atomic"
)

// Cache holds the process-lifetime snapshot. Readers get whatever snapshot
// is current; Refresh calls are serialized and swap the snapshot atomically,
// so a batch that already holds a snapshot keeps seeing that one.
type Cache struct {
	src     Source
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewCache creates an empty cache over src. Nothing is fetched until the
// first Snapshot or Refresh call.
func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Snapshot returns the cached snapshot, loading it on first use.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s := c.current.Load(); s != nil {
		return s, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.current.Load(); s != nil {
		return s, nil
	}
	return c.loadLocked(ctx)
}

// Refresh fetches a new snapshot and makes it current. On failure the
// previous snapshot stays in place.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Invalidate drops the cached snapshot so the next Snapshot call refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Store(nil)
}

func (c *Cache) loadLocked(ctx context.Context) (*Snapshot, error) {
	s, err := Load(ctx, c.src)
	if err != nil {
		return nil, err
	}
	c.current.Store(s)
	return s, nil
}
