package service

import (
	"context"
	"sync"
	"time"

	"go-newspulse/internal/metrics"
	"go-newspulse/internal/model"
)

// AllNewsKey holds the complete fetch-and-enrich result.
const AllNewsKey = "news:all"

// ArticleCache stores aggregation results for a fixed TTL. Implementations hand out
// copies, so callers may modify what they read.
type ArticleCache interface {
	Get(ctx context.Context, key string) ([]model.Article, bool)
	Set(ctx context.Context, key string, articles []model.Article)
	Delete(ctx context.Context, key string)
	Close() error
}

type cacheEntry struct {
	key        string
	payload    []model.Article
	insertedAt time.Time
	ttl        time.Duration
}

func (e cacheEntry) fresh(now time.Time) bool {
	return now.Sub(e.insertedAt) < e.ttl
}

type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

// NewMemoryCache creates the cache and starts its janitor; Close stops it.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return newMemoryCache(ttl, time.Now, time.Minute)
}

func newMemoryCache(ttl time.Duration, now func() time.Time, sweepEvery time.Duration) *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   now,
		stop:  make(chan struct{}),
	}
	if sweepEvery > 0 {
		go c.cleanupLoop(sweepEvery)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]model.Article, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || !entry.fresh(c.now()) {
		metrics.CacheRequests.WithLabelValues("memory", "miss").Inc()
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues("memory", "hit").Inc()
	return cloneArticles(entry.payload), true
}

func (c *MemoryCache) Set(_ context.Context, key string, articles []model.Article) {
	entry := cacheEntry{
		key:        key,
		payload:    cloneArticles(articles),
		insertedAt: c.now(),
		ttl:        c.ttl,
	}
	c.mu.Lock()
	c.items[key] = entry
	c.mu.Unlock()
}

func (c *MemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, fresh or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) Close() error {
	c.stopped.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) cleanup() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.items {
		if !entry.fresh(now) {
			delete(c.items, key)
		}
	}
}

func cloneArticles(in []model.Article) []model.Article {
	if in == nil {
		return nil
	}
	out := make([]model.Article, len(in))
	copy(out, in)
	return out
}
