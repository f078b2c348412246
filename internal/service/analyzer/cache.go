package analyzer

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// ExtractionCache is a content-addressed, read-through cache of extracted
// text keyed by payload digest. Extraction is a pure function of the payload
// bytes and format, so a digest hit never needs re-extraction; empty results
// are cached too. Errors (payload could not be read at all) are not cached,
// so a transient failure does not poison the digest. Concurrent misses for
// the same digest coalesce into a single extraction.
type ExtractionCache struct {
	group      singleflight.Group
	mu         sync.RWMutex
	entries    map[string]string
	maxEntries int
}

// NewExtractionCache creates a cache holding up to maxEntries texts.
// maxEntries <= 0 means unbounded.
func NewExtractionCache(maxEntries int) *ExtractionCache {
	return &ExtractionCache{
		entries:    make(map[string]string),
		maxEntries: maxEntries,
	}
}

// Get returns the cached text for digest, calling extract at most once per
// digest across concurrent callers.
func (c *ExtractionCache) Get(digest string, extract func() (string, error)) (string, error) {
	c.mu.RLock()
	text, ok := c.entries[digest]
	c.mu.RUnlock()
	if ok {
		return text, nil
	}

	result, err, _ := c.group.Do(digest, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[digest]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		extracted, err := extract()
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
			// Coarse eviction: drop an arbitrary entry. The corpus is
			// append-only, so anything evicted can be re-extracted on the
			// next scan that needs it.
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
		c.entries[digest] = extracted
		c.mu.Unlock()

		return extracted, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// Len returns the number of cached texts.
func (c *ExtractionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
