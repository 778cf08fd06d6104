// Package watch re-runs work when files under a root change. Events are
// filtered with the search include/exclude globs and batched by a debouncer.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/lds/internal/debug"
	"github.com/standardbeagle/lds/internal/search"
	"github.com/standardbeagle/lds/internal/types"
)

// Options configures a Watcher
type Options struct {
	Root     string
	Debounce time.Duration      // quiet period before a batch is delivered
	Filter   *search.PathFilter // nil watches everything
}

// ChangeFunc receives each debounced batch of changed paths
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher monitors a directory tree
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	filter  *search.PathFilter
	quiet   time.Duration

	// Watch mode statistics
	eventsProcessed int64
	batches         int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex
}

// Stats contains statistics about file watching operations
type Stats struct {
	EventsProcessed int64
	Batches         int64
	ErrorCount      int64
	LastEventTime   time.Time
}

// New creates a watcher for opts.Root. The root must be a directory.
func New(opts Options) (*Watcher, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", opts.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", opts.Root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	quiet := opts.Debounce
	if quiet <= 0 {
		quiet = types.DefaultWatchDebounceMs * time.Millisecond
	}
	filter := opts.Filter
	if filter == nil {
		filter = search.NewPathFilter(nil, nil)
	}

	return &Watcher{
		watcher: fsw,
		root:    filepath.Clean(opts.Root),
		filter:  filter,
		quiet:   quiet,
	}, nil
}

// Run watches until ctx is done and calls onChange with every debounced batch.
// onChange runs on the event loop; events arriving meanwhile are queued.
// Run closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.watcher.Close()

	debug.LogWatch("Starting file watcher for directory: %s\n", w.root)
	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", w.root, err)
	}

	d := newDebouncer(w.quiet)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			debug.LogWatch("File watcher stopped\n")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(event); ok {
				d.add(path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.incrementStats(0, 0, 1)
			log.Printf("File watcher error: %v", err)

		case <-d.ready():
			paths := d.drain()
			debug.LogWatch("Processing %d debounced file events\n", len(paths))
			w.incrementStats(int64(len(paths)), 1, 0)
			onChange(ctx, paths)
		}
	}
}

// Close releases the watcher without running it
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// addWatches adds a watch for dir and every non-excluded directory below it
func (w *Watcher) addWatches(dir string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // Skip unreadable subtrees
		}
		if !entry.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return filepath.SkipDir
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != w.root && w.filter.ExcludeDir(w.rel(path)) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

// handleEvent filters one fsnotify event. It returns the path to schedule, if
// any. New directories are watched instead of scheduled.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	path := event.Name
	debug.LogWatch("received event %v for path %s\n", event.Op, path)

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	rel := w.rel(path)
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.filter.ExcludeDir(rel) {
				return "", false
			}
			if err := w.addWatches(path); err != nil {
				log.Printf("Warning: failed to add watch for new directory %s: %v", path, err)
			}
			// Files created together with the directory are not reported by
			// fsnotify, so the directory itself counts as a change
			return path, true
		}
	}

	if !w.filter.IncludeFile(rel) {
		debug.LogWatch("ignoring %s (doesn't match patterns)\n", path)
		return "", false
	}
	return path, true
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// incrementStats updates watch mode statistics
func (w *Watcher) incrementStats(events, batches, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsProcessed += events
	w.batches += batches
	w.errorCount += errors
	if events > 0 {
		w.lastEventTime = time.Now()
	}
}

// Stats returns current watch mode statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()

	return Stats{
		EventsProcessed: w.eventsProcessed,
		Batches:         w.batches,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
	}
}
