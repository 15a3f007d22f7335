package di

import (
	"context"
	"sync"
	"time"

	"capsulehub/domain/core/services"
)

// InMemoryScoreCache memoizes derived DATM scores in process memory.
// Keys already encode the score inputs, so expiry is only a memory bound,
// never a correctness concern.
type InMemoryScoreCache struct {
	mu    sync.RWMutex
	items map[string]scoreEntry
	stop  chan struct{}
	once  sync.Once
}

type scoreEntry struct {
	score     services.Score
	expiresAt time.Time
}

// NewInMemoryScoreCache creates the cache and starts its janitor.
// Call Stop when the cache is no longer needed.
func NewInMemoryScoreCache() *InMemoryScoreCache {
	cache := &InMemoryScoreCache{
		items: make(map[string]scoreEntry),
		stop:  make(chan struct{}),
	}

	go cache.janitor()

	return cache
}

// Get retrieves a cached score
func (c *InMemoryScoreCache) Get(ctx context.Context, key string) (services.Score, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.items[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return services.Score{}, false
	}
	return entry.score, true
}

// Set stores a score with TTL in seconds
func (c *InMemoryScoreCache) Set(ctx context.Context, key string, score services.Score, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = scoreEntry{
		score:     score,
		expiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete removes a cached score
func (c *InMemoryScoreCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Stop terminates the janitor goroutine. Safe to call more than once.
func (c *InMemoryScoreCache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// janitor periodically evicts expired entries until Stop is called
func (c *InMemoryScoreCache) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.items {
				if now.After(entry.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
