package pattern

import (
	"container/list"
	"regexp"
	"sync"
)

// cacheEntry is one compiled pattern tracked by the LRU list
type cacheEntry struct {
	key      string
	compiled *regexp.Regexp
	hits     int64
}

// Cache provides LRU caching of compiled patterns across search invocations
type Cache struct {
	entries map[string]*list.Element
	lru     *list.List

	mu sync.Mutex

	maxSize          int
	maxPatternLength int

	stats CacheStats
}

// CacheStats tracks cache performance statistics
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Requests  int64
}

// NewCache creates a new pattern cache holding at most maxSize entries
func NewCache(maxSize, maxPatternLength int) *Cache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache{
		entries:          make(map[string]*list.Element),
		lru:              list.New(),
		maxSize:          maxSize,
		maxPatternLength: maxPatternLength,
	}
}

// Get returns the cached pattern for key, or nil
func (c *Cache) Get(key string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Requests++
	if el, ok := c.entries[key]; ok {
		c.lru.MoveToFront(el)
		entry := el.Value.(*cacheEntry)
		entry.hits++
		c.stats.Hits++
		return entry.compiled
	}
	c.stats.Misses++
	return nil
}

// Put stores a compiled pattern. Patterns longer than the configured limit are not cached.
func (c *Cache) Put(key string, compiled *regexp.Regexp) {
	if c.maxPatternLength > 0 && len(key) > c.maxPatternLength {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).compiled = compiled
		c.lru.MoveToFront(el)
		return
	}

	for c.lru.Len() >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, compiled: compiled})
}

// evictOldest removes the least recently used entry. Caller holds mu.
func (c *Cache) evictOldest() {
	el := c.lru.Back()
	if el == nil {
		return
	}
	c.lru.Remove(el)
	delete(c.entries, el.Value.(*cacheEntry).key)
	c.stats.Evictions++
}

// Len returns the number of cached patterns
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a copy of the cache statistics
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRatio returns hits / requests, or 0 when nothing was requested
func (c *Cache) HitRatio() float64 {
	s := c.Stats()
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Requests)
}

// Clear drops every cached pattern and resets statistics
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.stats = CacheStats{}
}
