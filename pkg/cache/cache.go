// Package cache provides an in-memory TTL cache for generated attribute sets.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/catalogmind/attribute-engine/pkg/models"
)

const keyPrefix = "category-attributes"

// Key derives the deterministic cache key for a subcategory.
// Names that differ only in surrounding whitespace or line breaks produce
// the same key.
func Key(categoryID int, name string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, categoryID, models.SanitizeName(name))
}

// AttributeCache is a concurrency-safe in-memory cache with time-based
// expiry. Expired entries are treated as misses and evicted lazily on the
// next lookup; there is no background sweeper.
type AttributeCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	attributes []string
	expiresAt  time.Time
}

// New creates an empty attribute cache.
func New() *AttributeCache {
	return &AttributeCache{
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached attributes for key, or false when the key is absent
// or its entry has expired. The returned slice is a copy; callers cannot
// mutate the stored entry.
func (c *AttributeCache) Get(key string) ([]string, bool) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	if !found {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := c.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return copyAttributes(entry.attributes), true
}

// Set stores attributes under key with the given TTL, overwriting any
// existing entry unconditionally.
func (c *AttributeCache) Set(key string, attributes []string, ttl time.Duration) {
	stored := copyAttributes(attributes)

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		attributes: stored,
		expiresAt:  time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Len returns the number of entries currently held, including any expired
// entries not yet evicted.
func (c *AttributeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func copyAttributes(attributes []string) []string {
	out := make([]string, len(attributes))
	copy(out, attributes)
	return out
}
