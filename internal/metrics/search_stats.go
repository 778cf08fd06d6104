// Package metrics collects per-search counters. Counters are updated from the
// walker and from parallel file workers, so every field is atomic.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// SearchStats is an immutable snapshot of one search
type SearchStats struct {
	FilesVisited    int64         `json:"files_visited" toml:"files_visited"`
	FilesMatched    int64         `json:"files_matched" toml:"files_matched"`
	FilesSkipped    int64         `json:"files_skipped" toml:"files_skipped"`
	UnreadableFiles int64         `json:"unreadable_files" toml:"unreadable_files"`
	UnreadableDirs  int64         `json:"unreadable_dirs" toml:"unreadable_dirs"`
	TotalMatches    int64         `json:"total_matches" toml:"total_matches"`
	BytesRead       int64         `json:"bytes_read" toml:"bytes_read"`
	CacheHits       int64         `json:"cache_hits" toml:"cache_hits"`
	Elapsed         time.Duration `json:"elapsed_ns" toml:"elapsed_ns"`
}

// String renders a one-line summary for the CLI --stats flag
func (s SearchStats) String() string {
	return fmt.Sprintf("%d files visited, %d matched, %d matches, %d skipped, %d unreadable files, %d unreadable dirs, %s",
		s.FilesVisited, s.FilesMatched, s.TotalMatches, s.FilesSkipped,
		s.UnreadableFiles, s.UnreadableDirs, s.Elapsed.Round(time.Microsecond))
}

// Collector accumulates counters while a search runs
type Collector struct {
	start time.Time

	filesVisited    atomic.Int64
	filesMatched    atomic.Int64
	filesSkipped    atomic.Int64
	unreadableFiles atomic.Int64
	unreadableDirs  atomic.Int64
	totalMatches    atomic.Int64
	bytesRead       atomic.Int64
	cacheHits       atomic.Int64
}

// NewCollector starts the clock for a new search
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

func (c *Collector) FileVisited()    { c.filesVisited.Add(1) }
func (c *Collector) FileSkipped()    { c.filesSkipped.Add(1) }
func (c *Collector) FileUnreadable() { c.unreadableFiles.Add(1) }
func (c *Collector) DirUnreadable()  { c.unreadableDirs.Add(1) }
func (c *Collector) CacheHit()       { c.cacheHits.Add(1) }

// BytesRead records raw bytes read from a file
func (c *Collector) BytesRead(n int) {
	c.bytesRead.Add(int64(n))
}

// FileMatched records a file that produced matches
func (c *Collector) FileMatched(matches int) {
	if matches <= 0 {
		return
	}
	c.filesMatched.Add(1)
	c.totalMatches.Add(int64(matches))
}

// Snapshot returns the current counter values
func (c *Collector) Snapshot() SearchStats {
	return SearchStats{
		FilesVisited:    c.filesVisited.Load(),
		FilesMatched:    c.filesMatched.Load(),
		FilesSkipped:    c.filesSkipped.Load(),
		UnreadableFiles: c.unreadableFiles.Load(),
		UnreadableDirs:  c.unreadableDirs.Load(),
		TotalMatches:    c.totalMatches.Load(),
		BytesRead:       c.bytesRead.Load(),
		CacheHits:       c.cacheHits.Load(),
		Elapsed:         time.Since(c.start),
	}
}
