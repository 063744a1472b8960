// Package versionquery - memoization of successful parses.
package versionquery

import "sync"

// maxCacheEntries bounds the parse cache. Query strings arrive from user
// input, so once the bound is reached the cache is flushed wholesale rather
// than allowed to grow without limit.
const maxCacheEntries = 4096

type parseCache struct {
	mu      sync.RWMutex
	entries map[string]Query
}

var cache = &parseCache{entries: make(map[string]Query)}

func (c *parseCache) get(s string) (Query, bool) {
	c.mu.RLock()
	q, ok := c.entries[s]
	c.mu.RUnlock()
	return q, ok
}

func (c *parseCache) put(s string, q Query) {
	c.mu.Lock()
	if len(c.entries) >= maxCacheEntries {
		clear(c.entries)
	}
	c.entries[s] = q
	c.mu.Unlock()
}

func (c *parseCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
