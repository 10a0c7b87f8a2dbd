package remote

import (
	"sync"
	"time"
)

// cacheEntry holds one fetched document.
type cacheEntry struct {
	url         string
	text        string
	cachedAt    time.Time
	accessCount int64
	lastAccess  time.Time
}

// CacheStats tracks cache performance.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalSize   int64
	HitRate     float64
	LastUpdated time.Time
}

// Cache keeps fetched documents keyed by URL so re-opening a remote document
// within the TTL skips the network round trip.
type Cache struct {
	entries map[string]*cacheEntry
	stats   CacheStats
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	enabled bool
}

// NewCache creates a cache with default settings: up to 100 documents for 5
// minutes each.
func NewCache() *Cache {
	return NewCacheWithConfig(100, 5*time.Minute)
}

// NewCacheWithConfig creates a cache with custom capacity and TTL.
func NewCacheWithConfig(maxSize int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		stats:   CacheStats{LastUpdated: time.Now()},
		maxSize: maxSize,
		ttl:     ttl,
		enabled: true,
	}
}

// Enable turns the cache on.
func (c *Cache) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = true
}

// Disable turns the cache off; Get always misses and Set is a no-op.
func (c *Cache) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Get returns the cached document for a URL if present and unexpired.
func (c *Cache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return "", false
	}
	entry, exists := c.entries[url]
	if !exists || time.Since(entry.cachedAt) > c.ttl {
		c.stats.Misses++
		c.stats.LastUpdated = time.Now()
		return "", false
	}

	c.stats.Hits++
	c.stats.LastUpdated = time.Now()
	entry.accessCount++
	entry.lastAccess = time.Now()
	return entry.text, true
}

// Set stores a fetched document, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(url, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	if _, exists := c.entries[url]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	now := time.Now()
	c.entries[url] = &cacheEntry{
		url:        url,
		text:       text,
		cachedAt:   now,
		lastAccess: now,
	}
	c.stats.TotalSize = int64(len(c.entries))
	c.stats.LastUpdated = now
}

// Invalidate removes the entry for a URL.
func (c *Cache) Invalidate(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, url)
	c.stats.TotalSize = int64(len(c.entries))
	c.stats.LastUpdated = time.Now()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.stats.TotalSize = 0
	c.stats.LastUpdated = time.Now()
}

// CleanExpired removes expired entries and returns how many were dropped.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for url, entry := range c.entries {
		if now.Sub(entry.cachedAt) > c.ttl {
			delete(c.entries, url)
			removed++
		}
	}
	if removed > 0 {
		c.stats.Evictions += int64(removed)
		c.stats.TotalSize = int64(len(c.entries))
		c.stats.LastUpdated = now
	}
	return removed
}

// Stats returns current cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.TotalSize = int64(len(c.entries))
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

// evictOldest removes the least recently used entry. Caller holds the lock.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.lastAccess
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}
