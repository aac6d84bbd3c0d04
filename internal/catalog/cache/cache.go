// Package cache holds the authoritative catalog snapshot with
// stale-while-revalidate semantics.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"construbot_backend/internal/catalog/domain"
	"construbot_backend/internal/catalog/repository"
	"construbot_backend/platform/logger"
)

// Cache serves the last-known-good catalog snapshot. Reads never block on the
// upstream source once a snapshot has loaded: a stale snapshot is returned
// immediately while a background refresh runs. Concurrent refreshes collapse
// into one upstream fetch.
type Cache struct {
	source       repository.Source
	ttl          time.Duration
	fetchTimeout time.Duration
	log          *logger.Logger

	mu    sync.RWMutex
	snap  *domain.Snapshot
	stale bool

	group singleflight.Group
}

// New creates a cache over the given source. Nothing is fetched until the
// first Get or ForceRefresh.
func New(source repository.Source, ttl, fetchTimeout time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		source:       source,
		ttl:          ttl,
		fetchTimeout: fetchTimeout,
		log:          log,
	}
}

// Get returns the current product list. Fresh snapshot: returned as-is.
// Stale snapshot: returned as-is and a non-blocking refresh is triggered.
// No snapshot yet: a blocking fetch runs; on failure an empty snapshot is
// cached and returned, never an error.
func (c *Cache) Get(ctx context.Context) []domain.Product {
	c.mu.RLock()
	snap := c.snap
	expired := c.stale || (snap != nil && snap.Age(time.Now()) >= c.ttl)
	c.mu.RUnlock()

	if snap != nil {
		if expired {
			go c.refresh("stale")
		}
		return snap.Items
	}

	c.refresh("initial")

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil
	}
	return c.snap.Items
}

// ForceRefresh performs a blocking fetch regardless of freshness, for the
// operator refresh endpoint. Returns item counts before and after.
func (c *Cache) ForceRefresh(ctx context.Context) (before, after int, err error) {
	c.mu.RLock()
	if c.snap != nil {
		before = len(c.snap.Items)
	}
	c.mu.RUnlock()

	err = c.refresh("manual")

	c.mu.RLock()
	if c.snap != nil {
		after = len(c.snap.Items)
	}
	c.mu.RUnlock()
	return before, after, err
}

// MarkStale flags the current snapshot so the next Get revalidates, without
// touching the snapshot itself. Used by the source file watcher.
func (c *Cache) MarkStale() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// Lookup finds a product by its exact name in the current snapshot.
func (c *Cache) Lookup(name string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return domain.Product{}, false
	}
	for _, p := range c.snap.Items {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Product{}, false
}

// PriceFor returns the authoritative unit price for a product name.
func (c *Cache) PriceFor(name string) (float64, bool) {
	p, ok := c.Lookup(name)
	if !ok {
		return 0, false
	}
	return p.Price, true
}

// Stats reports the cached item count and the snapshot age for health checks.
// A nil age means nothing has loaded yet.
func (c *Cache) Stats() (items int, age *time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return 0, nil
	}
	a := c.snap.Age(time.Now())
	return len(c.snap.Items), &a
}

// refresh fetches from the source and swaps the snapshot atomically.
// Duplicate concurrent refreshes share a single upstream call. On failure the
// last-known-good snapshot is kept; only a never-loaded cache degrades to an
// empty snapshot.
func (c *Cache) refresh(trigger string) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
		defer cancel()

		started := time.Now()
		items, err := c.source.Fetch(ctx)
		if err != nil {
			c.log.CatalogError(c.source.Name(), err)

			c.mu.Lock()
			if c.snap == nil {
				c.snap = &domain.Snapshot{Items: nil, FetchedAt: time.Now()}
			}
			c.stale = false
			c.mu.Unlock()
			return nil, err
		}

		c.mu.Lock()
		c.snap = &domain.Snapshot{Items: items, FetchedAt: time.Now()}
		c.stale = false
		c.mu.Unlock()

		c.log.CatalogRefresh(len(items), time.Since(started).Milliseconds(), trigger)
		return nil, nil
	})
	return err
}
