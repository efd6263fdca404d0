// Package cache keeps recent portfolio scrapes in memory so repeated
// requests for the same site within a caller-chosen age skip the browser.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/folio/models"
)

// retention bounds how long any entry is kept, whatever max_age callers send.
const retention = time.Hour

type entry struct {
	result    *models.ScrapeResult
	createdAt time.Time
}

// Cache is a bounded in-memory map of scrape results. It is safe for
// concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Cache holding at most maxEntries results and starts the
// expiry loop.
func New(maxEntries int) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Key identifies a scrape by its normalized URL and fetch mode.
func Key(url, fetchMode string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimRight(url, "/")))
	h.Write([]byte("|"))
	h.Write([]byte(fetchMode))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key if it is younger than maxAge.
// A non-positive maxAge disables the lookup.
func (c *Cache) Get(key string, maxAge time.Duration) (*models.ScrapeResult, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.createdAt) > maxAge {
		return nil, false
	}
	return e.result, true
}

// Set stores result under key, evicting the oldest entry when full.
func (c *Cache) Set(key string, result *models.ScrapeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey, oldest = k, e.createdAt
			}
		}
		delete(c.store, oldestKey)
	}
	c.store[key] = &entry{result: result, createdAt: c.now()}
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop ends the expiry loop.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.expire()
		}
	}
}

func (c *Cache) expire() {
	cutoff := c.now().Add(-retention)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
