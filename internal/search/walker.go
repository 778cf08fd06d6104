package search

import (
	"context"
	"io/fs"

	"github.com/standardbeagle/lds/internal/debug"
	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/fsys"
	"github.com/standardbeagle/lds/internal/metrics"
)

// frame is one directory being enumerated. The walker keeps a stack of frames
// instead of recursing, so deep trees cannot exhaust the goroutine stack.
type frame struct {
	dir     string
	entries []fs.DirEntry
	next    int
}

// walker visits files depth first in enumeration order: the files of a
// subdirectory are visited at the point where the subdirectory appears among
// its siblings.
type walker struct {
	fsys    fsys.FileSystem
	root    string
	filter  *PathFilter
	follow  bool
	stats   *metrics.Collector
	visited map[string]struct{}
}

func newWalker(fs fsys.FileSystem, root string, opts Options, stats *metrics.Collector) *walker {
	return &walker{
		fsys:    fs,
		root:    root,
		filter:  NewPathFilter(opts.Include, opts.Exclude),
		follow:  opts.FollowSymlinks,
		stats:   stats,
		visited: make(map[string]struct{}),
	}
}

// walk calls visit for every file under the root. A root that cannot be listed
// is returned as *errors.DirError; failures below the root are logged, counted
// and skipped. Only a visit error or cancellation stops the walk early.
func (w *walker) walk(ctx context.Context, visit func(path string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := w.fsys.ReadDir(w.root)
	if err != nil {
		return lderrors.NewDirError(w.root, err)
	}
	if w.follow {
		w.markVisited(w.root)
	}

	stack := []*frame{{dir: w.root, entries: entries}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		path := w.fsys.Join(top.dir, entry.Name())
		isDir, ok := w.classify(path, entry)
		if !ok {
			continue
		}

		if isDir {
			if w.filter.ExcludeDir(w.rel(path)) {
				debug.LogWalk("excluded directory %s\n", path)
				continue
			}
			children, err := w.fsys.ReadDir(path)
			if err != nil {
				w.stats.DirUnreadable()
				debug.LogWalk("skipping subtree: %v\n", lderrors.NewDirError(path, err))
				continue
			}
			stack = append(stack, &frame{dir: path, entries: children})
			continue
		}

		if !w.filter.IncludeFile(w.rel(path)) {
			continue
		}
		if err := visit(path); err != nil {
			return err
		}
	}
	return nil
}

// classify resolves symlinks. Symlinked files are searched like regular files;
// symlinked directories only when following is enabled and the target has not
// been entered yet.
func (w *walker) classify(path string, entry fs.DirEntry) (isDir bool, ok bool) {
	if entry.Type()&fs.ModeSymlink == 0 {
		if entry.IsDir() && w.follow {
			w.markVisited(path)
		}
		return entry.IsDir(), true
	}

	info, err := w.fsys.Stat(path)
	if err != nil {
		w.stats.FileUnreadable()
		debug.LogWalk("broken symlink %s: %v\n", path, err)
		return false, false
	}
	if !info.IsDir() {
		return false, true
	}
	if !w.follow {
		debug.LogWalk("not following symlinked directory %s\n", path)
		return false, false
	}
	if !w.markVisited(path) {
		debug.LogWalk("symlink cycle at %s\n", path)
		return false, false
	}
	return true, true
}

// markVisited records the resolved directory and reports whether it was new.
// Filesystems that cannot resolve links never have their links followed.
func (w *walker) markVisited(path string) bool {
	resolver, ok := w.fsys.(fsys.Resolver)
	if !ok {
		return false
	}
	real, err := resolver.RealPath(path)
	if err != nil {
		return false
	}
	if _, seen := w.visited[real]; seen {
		return false
	}
	w.visited[real] = struct{}{}
	return true
}

func (w *walker) rel(path string) string {
	rel, err := w.fsys.Rel(w.root, path)
	if err != nil {
		return path
	}
	return rel
}
