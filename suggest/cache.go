// Package suggest turns partial location text into candidate airports and cities.
package suggest

import (
	"sync"

	"flightcast/models"
)

// Cache memoizes location search results by exact query string for the lifetime
// of a session. Keys are case sensitive and never normalized; entries never expire.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]models.LocationCandidate
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]models.LocationCandidate)}
}

func (c *Cache) Get(query string) ([]models.LocationCandidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[query]
	return v, ok
}

func (c *Cache) Put(query string, candidates []models.LocationCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = candidates
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
