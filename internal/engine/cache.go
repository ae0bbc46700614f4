package engine

import (
	"sync"

	"github.com/tablewise/bistro-cli/internal/model"
)

// Cache memoizes assessments by record fingerprint. Entries are
// write-once: the first stored assessment for a fingerprint wins, so
// concurrent evaluations of the same record converge on one result.
// There is no TTL; entries live until the process ends.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*model.Assessment
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*model.Assessment)}
}

// Get returns the cached assessment for a fingerprint, if any.
func (c *Cache) Get(fingerprint string) (*model.Assessment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.entries[fingerprint]
	return a, ok
}

// Put stores an assessment unless one already exists for the
// fingerprint, and returns the assessment that ended up cached.
func (c *Cache) Put(fingerprint string, a *model.Assessment) *model.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[fingerprint]; ok {
		return existing
	}
	c.entries[fingerprint] = a
	return a
}

// Len reports the number of cached assessments.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
