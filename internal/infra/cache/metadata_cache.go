package cache

import (
	"sync"
	"time"

	"sharelink-service/internal/domain/link"
)

// CacheEntry represents a cached link record with expiration
type CacheEntry struct {
	Record     *link.Record
	ExpiryTime time.Time
}

// MetadataCache is a thread-safe TTL cache fronting shared-link lookups
// by URL. Mutations of a link must invalidate its entry.
type MetadataCache struct {
	cache map[string]CacheEntry
	ttl   time.Duration
	mutex sync.RWMutex
}

func NewMetadataCache(ttl time.Duration) *MetadataCache {
	return &MetadataCache{
		cache: make(map[string]CacheEntry),
		ttl:   ttl,
	}
}

// Get retrieves a record from cache if not expired
func (c *MetadataCache) Get(url string) (*link.Record, bool) {
	c.mutex.RLock()
	entry, found := c.cache[url]
	c.mutex.RUnlock()

	if !found || time.Now().After(entry.ExpiryTime) {
		return nil, false
	}
	return entry.Record, true
}

// Set stores a record in the cache
func (c *MetadataCache) Set(url string, rec *link.Record) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache[url] = CacheEntry{Record: rec, ExpiryTime: time.Now().Add(c.ttl)}
}

// Invalidate drops a single entry
func (c *MetadataCache) Invalidate(url string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.cache, url)
}

// Clear removes expired entries
func (c *MetadataCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.cache {
		if now.After(entry.ExpiryTime) {
			delete(c.cache, key)
		}
	}
}
