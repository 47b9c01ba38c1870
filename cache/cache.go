// Package cache is an optional, in-memory response cache sitting in front of
// the HTTP API surface only (never the core Fetch/Crawl functions
// themselves, per spec §5's no-global-singletons note: callers construct
// their own instance). Grounded on the teacher's cache/cache.go
// (RWMutex-guarded map, random eviction at capacity, a periodic cleanup
// goroutine), rekeyed on blake3 per rohmanhakim-docs-crawler's
// pkg/hashutil usage of lukechampine.com/blake3 instead of the teacher's
// sha256.
package cache

import (
	"encoding/hex"
	"sync"
	"time"

	"lukechampine.com/blake3"

	"github.com/brightwell-labs/fetchcore/models"
)

type entry struct {
	result    models.FetchResult
	createdAt time.Time
}

// Cache is a bounded in-memory cache of FetchResult keyed by request
// fingerprint. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	stop       chan struct{}
}

// New creates a Cache with the given capacity. A background goroutine runs
// every cleanupInterval and evicts entries older than ten cleanup intervals;
// a cleanupInterval of zero or less starts no goroutine.
func New(maxEntries int, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// Key derives a cache key from the request URL and the options that affect
// its result (preset, proxy, crawl depth, etc. — callers concatenate what
// matters to them before calling Key).
func Key(parts ...string) string {
	h := blake3.New(32, nil)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key if present and younger than ttl.
func (c *Cache) Get(key string, ttl time.Duration) (models.FetchResult, bool) {
	if ttl <= 0 {
		return models.FetchResult{}, false
	}
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return models.FetchResult{}, false
	}
	if time.Since(e.createdAt) > ttl {
		return models.FetchResult{}, false
	}
	return e.result, true
}

// Set stores result under key. If the cache is at capacity, one entry is
// evicted at random (Go's map iteration order is itself randomized).
func (c *Cache) Set(key string, result models.FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key] = &entry{result: result, createdAt: time.Now()}
}

// Close stops the background cleanup goroutine. Safe to call once.
func (c *Cache) Close() {
	close(c.stop)
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-interval * 10)
			c.mu.Lock()
			for k, e := range c.store {
				if e.createdAt.Before(cutoff) {
					delete(c.store, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
