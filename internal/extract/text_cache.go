package extract

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lds/internal/markup"
)

// cacheKey identifies normalized text by raw content and the rule applied to it
type cacheKey struct {
	content uint64
	rule    uint64
}

// TextCache keeps normalized markup text across searches so unchanged files are
// not stripped again. Entries are evicted in insertion order once the cache is
// full. Safe for concurrent use.
type TextCache struct {
	mu      sync.Mutex
	entries map[cacheKey]string
	order   []cacheKey
	max     int

	hits   int64
	misses int64
}

// NewTextCache creates a cache holding at most maxEntries texts
func NewTextCache(maxEntries int) *TextCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &TextCache{
		entries: make(map[cacheKey]string, maxEntries),
		max:     maxEntries,
	}
}

func (c *TextCache) get(key cacheKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return text, ok
}

func (c *TextCache) put(key cacheKey, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		c.entries[key] = text
		return
	}
	for len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = text
	c.order = append(c.order, key)
}

// Len returns the number of cached texts
func (c *TextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts
func (c *TextCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// ruleFingerprint hashes the parts of a rule that change the normalized output
func ruleFingerprint(rule markup.Rule) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(rule.Kind.String())
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strings.Join(rule.Tags, "\x00"))
	return d.Sum64()
}
