package pattern

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetPut(t *testing.T) {
	cache := NewCache(4, 100)

	assert.Nil(t, cache.Get("s:foo"))

	re := regexp.MustCompile("foo")
	cache.Put("s:foo", re)

	got := cache.Get("s:foo")
	require.NotNil(t, got)
	assert.Same(t, re, got)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Requests)
	assert.InDelta(t, 0.5, cache.HitRatio(), 0.0001)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(2, 100)

	cache.Put("a", regexp.MustCompile("a"))
	cache.Put("b", regexp.MustCompile("b"))

	// Touch "a" so "b" becomes the oldest entry
	require.NotNil(t, cache.Get("a"))

	cache.Put("c", regexp.MustCompile("c"))

	assert.Equal(t, 2, cache.Len())
	assert.NotNil(t, cache.Get("a"))
	assert.Nil(t, cache.Get("b"))
	assert.NotNil(t, cache.Get("c"))
	assert.Equal(t, int64(1), cache.Stats().Evictions)
}

func TestCache_SkipsLongPatterns(t *testing.T) {
	cache := NewCache(2, 10)

	long := strings.Repeat("x", 11)
	cache.Put(long, regexp.MustCompile(long))

	assert.Equal(t, 0, cache.Len())
	assert.Nil(t, cache.Get(long))
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(2, 100)
	cache.Put("a", regexp.MustCompile("a"))
	cache.Get("a")

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, CacheStats{}, cache.Stats())
	assert.Zero(t, cache.HitRatio())
}
