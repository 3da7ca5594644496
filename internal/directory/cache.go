package directory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds the single process-wide snapshot slot with a time-to-live.
//
// Expiry is lazy: age is checked on access, there is no background timer.
// Concurrent callers hitting a cold or stale slot are coalesced into one
// fetch+build cycle via singleflight; all of them observe the same published
// snapshot. A published snapshot is read-only and replaced wholesale.
type Cache struct {
	source Source
	opts   BuildOptions
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu    sync.RWMutex
	snap  *Snapshot
	group singleflight.Group
}

// NewCache creates a cache over the given source.
func NewCache(source Source, ttl time.Duration, opts BuildOptions, logger *slog.Logger) *Cache {
	return &Cache{
		source: source,
		opts:   opts,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock overrides the time source. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Snapshot returns the current valid snapshot, rebuilding it first when the
// slot is empty or its age has reached the TTL. Exactly one rebuild runs per
// expiry regardless of how many callers race into it.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := c.current(); snap != nil {
		return snap, nil
	}

	v, err, _ := c.group.Do("snapshot", func() (any, error) {
		// A caller that queued behind the winning build finds a fresh
		// snapshot here and skips the rebuild entirely.
		if snap := c.current(); snap != nil {
			return snap, nil
		}
		return c.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the current snapshot so the next access rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

// Current returns the published snapshot without triggering a rebuild, or
// nil when the slot is empty. Stale snapshots are still returned; the health
// endpoint uses this to report age without forcing a fetch.
func (c *Cache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// current returns the snapshot only while it is within its TTL.
func (c *Cache) current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil
	}
	if c.snap.Age(c.now()) >= c.ttl {
		return nil
	}
	return c.snap
}

// rebuild fetches the corpus, builds a fresh snapshot, and publishes it.
func (c *Cache) rebuild(ctx context.Context) (*Snapshot, error) {
	start := c.now()

	listings, err := c.source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := BuildSnapshot(listings, c.opts)
	// Age is measured against the cache clock, which tests may fake.
	snap.BuiltAt = start

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.logger.Info("listing snapshot published",
		"build_id", snap.BuildID,
		"total", snap.Total,
		"cities", len(snap.Cities),
		"states", len(snap.States),
		"elapsed", c.now().Sub(start),
	)

	return snap, nil
}
