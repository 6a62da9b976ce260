// Package infra provides shared infrastructure components used across
// derivx: a bounded TTL cache and a rate limiter for remote reads.
package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// --- Bounded TTL cache ---

// Cache is a thread-safe in-memory cache with TTL, bounded by total cost.
// Writes are buffered; call Wait when a write must be visible to the next
// read.
type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

// NewCache creates a cache holding at most maxCost units with the given
// default TTL. A non-positive ttl means entries never expire.
func NewCache(maxCost int64, ttl time.Duration) (*Cache, error) {
	if maxCost <= 0 {
		return nil, fmt.Errorf("cache max cost must be positive, got %d", maxCost)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
		// Costs are caller-defined units, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{c: c, ttl: ttl}, nil
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

// Set stores a value with unit cost and the default TTL. It reports
// whether the write was accepted.
func (c *Cache) Set(key string, value any) bool {
	return c.SetWithCost(key, value, 1)
}

// SetWithCost stores a value charged at cost against the cache bound.
func (c *Cache) SetWithCost(key string, value any, cost int64) bool {
	if c.ttl <= 0 {
		return c.c.Set(key, value, cost)
	}
	return c.c.SetWithTTL(key, value, cost, c.ttl)
}

// Wait blocks until buffered writes have been applied.
func (c *Cache) Wait() { c.c.Wait() }

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) { c.c.Del(key) }

// Flush removes all entries from the cache.
func (c *Cache) Flush() { c.c.Clear() }

// Close stops the cache's background goroutines.
func (c *Cache) Close() { c.c.Close() }

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests
// per refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		wait := rl.refillRate - time.Since(rl.lastRefill)
		rl.mu.Unlock()

		if wait <= 0 || wait > 100*time.Millisecond {
			wait = 100 * time.Millisecond
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// refill adds one token per elapsed refillRate. Must be called with mu held.
func (rl *RateLimiter) refill() {
	elapsed := time.Since(rl.lastRefill)
	if elapsed < rl.refillRate {
		return
	}
	periods := int(elapsed / rl.refillRate)
	rl.tokens += periods
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
}
