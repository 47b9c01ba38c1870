// Package session manages a keyed pool of TLS-fingerprinted HTTP sessions
// with age/count-based recycling and in-flight-safe concurrent creation.
//
// Grounded on the teacher's engine/adaptive_pool.go PageHandle/AdaptivePool
// (errScore/ShouldRetire health tracking, idle-channel + all-map pool,
// per-key creation lock), adapted from a single pool of browser pages to a
// map of pools keyed by (preset, proxy), and from memory-pressure scaling to
// pure age/request-count recycling per spec §4.B.
package session

import (
	"net/http"
	"sync"
	"time"
)

// Config bounds session lifetime (spec §3 SessionEntry).
type Config struct {
	MaxAge      time.Duration // default 1h
	MaxRequests int64         // default 10_000
}

// DefaultConfig matches spec §3's MAX_AGE/MAX_REQUESTS constants.
func DefaultConfig() Config {
	return Config{MaxAge: time.Hour, MaxRequests: 10_000}
}

// Factory builds the underlying *http.Client for a given preset/proxy pair.
// Supplied by package transport, which owns the utls dial logic.
type Factory func(preset, proxy string) (*http.Client, error)

// Entry is a SessionEntry (spec §3): exclusively owns a client, with
// lifecycle counters guarded by its own mutex.
type Entry struct {
	mu          sync.Mutex
	client      *http.Client
	createdAt   time.Time
	requestCnt  int64
	inFlightCnt int64
}

// Client returns the underlying HTTP client.
func (e *Entry) Client() *http.Client {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client
}

func (e *Entry) acquire() {
	e.mu.Lock()
	e.requestCnt++
	e.inFlightCnt++
	e.mu.Unlock()
}

// Release decrements the in-flight counter. Must be called exactly once per
// successful Get, on every path (success, error, timeout) per spec §4.B.
func (e *Entry) Release() {
	e.mu.Lock()
	e.inFlightCnt--
	e.mu.Unlock()
}

func (e *Entry) stale(cfg Config) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Since(e.createdAt) > cfg.MaxAge || e.requestCnt >= cfg.MaxRequests
}

func (e *Entry) inFlight() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlightCnt
}

// key is the (preset, proxy) pair identifying a pool slot.
type key struct {
	preset string
	proxy  string
}

// Cache is the keyed pool of SessionEntry values described in spec §4.B.
type Cache struct {
	cfg     Config
	factory Factory

	mu      sync.Mutex
	entries map[key]*Entry
	locks   map[key]*sync.Mutex // per-key creation locks
}

// NewCache builds a session cache backed by factory for creating clients.
func NewCache(factory Factory, cfg Config) *Cache {
	return &Cache{
		cfg:     cfg,
		factory: factory,
		entries: make(map[key]*Entry),
		locks:   make(map[key]*sync.Mutex),
	}
}

func (c *Cache) creationLock(k key) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[k]
	if !ok {
		l = &sync.Mutex{}
		c.locks[k] = l
	}
	return l
}

// Get returns a session for (preset, proxy), creating one if necessary.
// Callers must call Entry.Release exactly once after use, on every path.
func (c *Cache) Get(preset, proxy string) (*Entry, error) {
	k := key{preset: preset, proxy: proxy}

	for {
		c.mu.Lock()
		entry, ok := c.entries[k]
		c.mu.Unlock()

		if ok {
			if !entry.stale(c.cfg) {
				entry.acquire()
				return entry, nil
			}
			if entry.inFlight() > 0 {
				// Stale but still serving requests: defer recycling, use as-is.
				entry.acquire()
				return entry, nil
			}
			// Stale and drained: remove and fall through to (re)create.
			c.mu.Lock()
			if c.entries[k] == entry {
				delete(c.entries, k)
				go closeIdle(entry)
			}
			c.mu.Unlock()
		}

		lock := c.creationLock(k)
		lock.Lock()
		// Re-check: a concurrent winner of the race may have populated the map
		// while we waited for the lock.
		c.mu.Lock()
		entry, ok = c.entries[k]
		c.mu.Unlock()
		if ok && !entry.stale(c.cfg) {
			lock.Unlock()
			entry.acquire()
			return entry, nil
		}

		client, err := c.factory(preset, proxy)
		if err != nil {
			lock.Unlock()
			return nil, err
		}
		newEntry := &Entry{client: client, createdAt: time.Now()}
		c.mu.Lock()
		c.entries[k] = newEntry
		c.mu.Unlock()
		lock.Unlock()

		newEntry.acquire()
		return newEntry, nil
	}
}

func closeIdle(e *Entry) {
	c := e.Client()
	if c != nil {
		c.CloseIdleConnections()
	}
}

// CloseAll swaps out the map and closes every session, tolerating per-session
// close errors (there are none to report — CloseIdleConnections never fails).
func (c *Cache) CloseAll() {
	c.mu.Lock()
	old := c.entries
	c.entries = make(map[key]*Entry)
	c.mu.Unlock()

	for _, e := range old {
		closeIdle(e)
	}
}
