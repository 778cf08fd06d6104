// Package search finds every occurrence of a query in the files below a root
// directory and renders each one as a highlighted snippet with surrounding
// context.
package search

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lds/internal/debug"
	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/extract"
	"github.com/standardbeagle/lds/internal/fsys"
	"github.com/standardbeagle/lds/internal/metrics"
	"github.com/standardbeagle/lds/internal/pattern"
	"github.com/standardbeagle/lds/internal/types"
)

// Engine runs searches against a filesystem. Compiled patterns and normalized
// markup text are cached across searches; an Engine is safe for concurrent use.
type Engine struct {
	fsys     fsys.FileSystem
	compiler *pattern.Compiler
	texts    *extract.TextCache
}

// NewEngine creates an engine with default cache sizes
func NewEngine(fs fsys.FileSystem) *Engine {
	return NewEngineWithCompiler(fs, pattern.NewCompiler(types.DefaultPatternCacheSize))
}

// NewEngineWithCompiler creates an engine sharing an existing pattern compiler
func NewEngineWithCompiler(fs fsys.FileSystem, compiler *pattern.Compiler) *Engine {
	return &Engine{
		fsys:     fs,
		compiler: compiler,
		texts:    extract.NewTextCache(types.DefaultTextCacheEntries),
	}
}

// FileSystem returns the filesystem the engine reads from
func (e *Engine) FileSystem() fsys.FileSystem {
	return e.fsys
}

// PatternStats returns the compiled pattern cache counters
func (e *Engine) PatternStats() pattern.CacheStats {
	return e.compiler.Stats()
}

// Compile builds a query. Invalid patterns and empty literals return a
// *errors.QueryError.
func (e *Engine) Compile(raw string, mode types.Mode, caseInsensitive bool) (Query, error) {
	return CompileQuery(raw, mode, caseInsensitive, e.compiler)
}

// Search compiles raw and searches every file below root. The query is
// validated before the filesystem is touched.
func (e *Engine) Search(ctx context.Context, root, raw string, mode types.Mode, opts Options) ([]FileResult, error) {
	results, _, err := e.SearchWithStats(ctx, root, raw, mode, opts)
	return results, err
}

// SearchWithStats is Search that also reports traversal counters
func (e *Engine) SearchWithStats(ctx context.Context, root, raw string, mode types.Mode, opts Options) ([]FileResult, metrics.SearchStats, error) {
	q, err := e.Compile(raw, mode, opts.CaseInsensitive)
	if err != nil {
		return nil, metrics.SearchStats{}, err
	}
	return e.SearchDirWithStats(ctx, root, q, opts)
}

// SearchDir searches every file below root with an already compiled query.
// Unreadable files and subdirectories are skipped; an unreadable root is an
// error.
func (e *Engine) SearchDir(ctx context.Context, root string, q Query, opts Options) ([]FileResult, error) {
	results, _, err := e.SearchDirWithStats(ctx, root, q, opts)
	return results, err
}

// SearchDirWithStats is SearchDir that also reports traversal counters
func (e *Engine) SearchDirWithStats(ctx context.Context, root string, q Query, opts Options) ([]FileResult, metrics.SearchStats, error) {
	if q.IsZero() {
		return nil, metrics.SearchStats{}, lderrors.NewQueryError("", ErrEmptyLiteral)
	}

	stats := metrics.NewCollector()
	extractor := e.extractor(opts)
	w := newWalker(e.fsys, root, opts, stats)

	debug.LogSearch("search %s %q in %s (parallel=%v)\n", q.Mode(), q.String(), root, opts.Parallel)

	var (
		results []FileResult
		err     error
	)
	if opts.Parallel {
		results, err = e.searchParallel(ctx, w, q, extractor, opts, stats)
	} else {
		results, err = e.searchSequential(ctx, w, q, extractor, opts, stats)
	}
	if err != nil {
		return nil, stats.Snapshot(), err
	}

	if opts.SortByPath {
		SortResults(results)
	}
	if results == nil {
		results = []FileResult{}
	}
	return results, stats.Snapshot(), nil
}

// SearchFile searches a single file. Unlike directory searches, a file that
// cannot be read is reported to the caller.
func (e *Engine) SearchFile(ctx context.Context, path string, q Query, opts Options) ([]FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.IsZero() {
		return nil, lderrors.NewQueryError("", ErrEmptyLiteral)
	}

	doc, err := e.extractor(opts).Load(path)
	if err != nil {
		return nil, err
	}

	snippets := FindSnippets(doc.Text, q, opts.snippetOptions())
	if len(snippets) == 0 {
		return []FileResult{}, nil
	}
	return []FileResult{{Path: path, Matches: snippets}}, nil
}

func (e *Engine) extractor(opts Options) *extract.Extractor {
	return extract.New(e.fsys, extract.Options{
		Rules:       opts.Markup,
		MaxFileSize: opts.MaxFileSize,
		SkipBinary:  opts.SkipBinary,
		Cache:       e.texts,
	})
}

func (e *Engine) searchSequential(ctx context.Context, w *walker, q Query, extractor *extract.Extractor, opts Options, stats *metrics.Collector) ([]FileResult, error) {
	var results []FileResult
	err := w.walk(ctx, func(path string) error {
		if result, ok := searchOne(path, q, extractor, opts, stats); ok {
			results = append(results, result)
		}
		return nil
	})
	return results, err
}

// searchParallel keeps the walk sequential and fans file work out to a bounded
// errgroup. Each file carries its walk position so results come back in the
// same order as a sequential search.
func (e *Engine) searchParallel(ctx context.Context, w *walker, q Query, extractor *extract.Extractor, opts Options, stats *metrics.Collector) ([]FileResult, error) {
	type ordered struct {
		seq    int
		result FileResult
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	var (
		mu        sync.Mutex
		collected []ordered
		seq       int
	)

	walkErr := w.walk(gctx, func(path string) error {
		n := seq
		seq++
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if result, ok := searchOne(path, q, extractor, opts, stats); ok {
				mu.Lock()
				collected = append(collected, ordered{seq: n, result: result})
				mu.Unlock()
			}
			return nil
		})
		return nil
	})

	waitErr := g.Wait()
	// Workers only fail through gctx, so cancellation is reported as the caller's error
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	if waitErr != nil {
		return nil, waitErr
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })
	results := make([]FileResult, 0, len(collected))
	for _, c := range collected {
		results = append(results, c.result)
	}
	return results, nil
}

// searchOne extracts and searches a single file during a directory walk.
// Failures are recovered here: they are logged, counted and the file is
// dropped.
func searchOne(path string, q Query, extractor *extract.Extractor, opts Options, stats *metrics.Collector) (FileResult, bool) {
	stats.FileVisited()

	doc, err := extractor.Load(path)
	if err != nil {
		if errors.Is(err, lderrors.ErrBinaryFile) || errors.Is(err, lderrors.ErrFileTooLarge) {
			stats.FileSkipped()
		} else {
			stats.FileUnreadable()
		}
		debug.LogWalk("skipping file: %v\n", err)
		return FileResult{}, false
	}

	stats.BytesRead(doc.Size)
	if doc.Cached {
		stats.CacheHit()
	}

	snippets := FindSnippets(doc.Text, q, opts.snippetOptions())
	if len(snippets) == 0 {
		return FileResult{}, false
	}
	stats.FileMatched(len(snippets))
	return FileResult{Path: path, Matches: snippets}, true
}
