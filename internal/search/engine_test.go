package search

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/fsys"
	"github.com/standardbeagle/lds/internal/fsys/fsystest"
	"github.com/standardbeagle/lds/internal/markup"
	"github.com/standardbeagle/lds/internal/types"
)

// bracketOptions renders matches as [match] with a two byte window
func bracketOptions() Options {
	opts := DefaultOptions()
	opts.ContextWindow = 2
	opts.Prefix = "["
	opts.Postfix = "]"
	return opts
}

func nestedFS() fstest.MapFS {
	return fstest.MapFS{
		"a.txt":     {Data: []byte("x in a")},
		"b/c.txt":   {Data: []byte("x in c")},
		"b/d/e.txt": {Data: []byte("x in e")},
		"b/z.txt":   {Data: []byte("nothing")},
		"f.txt":     {Data: []byte("x in f")},
	}
}

func paths(results []FileResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Path)
	}
	return out
}

func TestSearch_SingleFile(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"a.txt": {Data: []byte("hello world hello")},
	}))

	results, stats, err := engine.SearchWithStats(context.Background(), ".", "hello", types.ModeLiteral, bracketOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].Path)
	assert.Equal(t, []string{"[hello] w", "d [hello]"}, results[0].Matches)

	assert.Equal(t, int64(1), stats.FilesVisited)
	assert.Equal(t, int64(1), stats.FilesMatched)
	assert.Equal(t, int64(2), stats.TotalMatches)
	assert.Equal(t, int64(17), stats.BytesRead)
}

func TestSearch_EmptyDirectory(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"empty": {Mode: fs.ModeDir},
	}))

	results, err := engine.Search(context.Background(), "empty", "anything", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	// Same on the real filesystem
	results, err = NewEngine(fsys.OS()).Search(context.Background(), t.TempDir(), "anything", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_InvalidPatternTouchesNothing(t *testing.T) {
	counting := fsystest.NewCountingFS(fsys.FromFS(nestedFS()))
	engine := NewEngine(counting)

	results, err := engine.Search(context.Background(), ".", "[abc", types.ModePattern, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, lderrors.ErrInvalidQuery)
	assert.NotErrorIs(t, err, lderrors.ErrFileUnreadable)
	assert.Equal(t, int64(0), counting.Calls())

	_, err = engine.Search(context.Background(), ".", "", types.ModeLiteral, DefaultOptions())
	assert.ErrorIs(t, err, lderrors.ErrInvalidQuery)
	assert.Equal(t, int64(0), counting.Calls())
}

func TestSearch_UnreadableFileSkipped(t *testing.T) {
	faulty := fsystest.NewFaultyFS(fsys.FromFS(fstest.MapFS{
		"a.txt": {Data: []byte("match here")},
		"b.txt": {Data: []byte("match there")},
	})).FailRead("b.txt", fs.ErrPermission)

	results, stats, err := NewEngine(faulty).SearchWithStats(context.Background(), ".", "match", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.txt", results[0].Path)
	assert.Equal(t, int64(2), stats.FilesVisited)
	assert.Equal(t, int64(1), stats.UnreadableFiles)
}

func TestSearch_DepthFirstOrder(t *testing.T) {
	engine := NewEngine(fsys.FromFS(nestedFS()))

	results, err := engine.Search(context.Background(), ".", "x", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b/c.txt", "b/d/e.txt", "f.txt"}, paths(results))
	for _, r := range results {
		assert.NotEmpty(t, r.Matches)
	}
}

func TestSearch_UnreadableSubdirectory(t *testing.T) {
	faulty := fsystest.NewFaultyFS(fsys.FromFS(nestedFS())).FailReadDir("b", fs.ErrPermission)

	results, stats, err := NewEngine(faulty).SearchWithStats(context.Background(), ".", "x", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "f.txt"}, paths(results))
	assert.Equal(t, int64(1), stats.UnreadableDirs)
}

func TestSearch_UnreadableRoot(t *testing.T) {
	faulty := fsystest.NewFaultyFS(fsys.FromFS(nestedFS())).FailReadDir(".", fs.ErrPermission)

	_, err := NewEngine(faulty).Search(context.Background(), ".", "x", types.ModeLiteral, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, lderrors.ErrSubtreeUnreadable)

	var dirErr *lderrors.DirError
	require.True(t, errors.As(err, &dirErr))
	assert.Equal(t, ".", dirErr.Path)

	_, err = NewEngine(fsys.FromFS(nestedFS())).Search(context.Background(), "missing", "x", types.ModeLiteral, DefaultOptions())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSearch_IncludeExclude(t *testing.T) {
	counting := fsystest.NewCountingFS(fsys.FromFS(nestedFS()))
	engine := NewEngine(counting)

	opts := DefaultOptions()
	opts.Exclude = []string{"b/**"}
	results, err := engine.Search(context.Background(), ".", "x", types.ModeLiteral, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "f.txt"}, paths(results))
	assert.Equal(t, int64(1), counting.ReadDirCalls(), "excluded directory is not listed")

	opts = DefaultOptions()
	opts.Include = []string{"b/**/*.txt"}
	results, err = engine.Search(context.Background(), ".", "x", types.ModeLiteral, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"b/c.txt", "b/d/e.txt"}, paths(results))

	opts.Exclude = []string{"**/d"}
	results, err = engine.Search(context.Background(), ".", "x", types.ModeLiteral, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"b/c.txt"}, paths(results))
}

func TestSearch_MarkupFiles(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"page.html": {Data: []byte("<head><title>hidden keyword</title><script>x</script></head><p>visible <i>keyword</i></p>")},
		"page.txt":  {Data: []byte("<p>raw keyword</p>")},
		"page.xrtm": {Data: []byte("<scalable_block>keyword</script><div>keyword &amp; more</div>")},
	}))

	opts := DefaultOptions()
	opts.ContextWindow = 100
	opts.Prefix, opts.Postfix = "*", "*"
	results, err := engine.Search(context.Background(), ".", "keyword", types.ModeLiteral, opts)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "page.html", results[0].Path)
	assert.Equal(t, []string{"visible *keyword*"}, results[0].Matches)
	assert.Equal(t, "page.txt", results[1].Path)
	assert.Equal(t, []string{"<p>raw *keyword*</p>"}, results[1].Matches)
	assert.Equal(t, "page.xrtm", results[2].Path)
	assert.Equal(t, []string{"*keyword* & more"}, results[2].Matches)

	// Without markup rules html is searched raw
	opts.Markup = markup.Rules{}
	results, err = engine.Search(context.Background(), ".", "keyword", types.ModeLiteral, opts)
	require.NoError(t, err)
	assert.Len(t, results[0].Matches, 2)
}

func TestSearch_PatternCaseInsensitive(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"a.txt": {Data: []byte("Core CONFIG core")},
	}))

	opts := bracketOptions()
	opts.ContextWindow = 0
	opts.CaseInsensitive = true
	results, err := engine.Search(context.Background(), ".", `co\S`, types.ModePattern, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"[Cor]", "[CON]", "[cor]"}, results[0].Matches)

	// Literal mode ignores the flag
	results, err = engine.Search(context.Background(), ".", "core", types.ModeLiteral, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"[core]"}, results[0].Matches)
}

func TestSearch_MaxMatchesPerFile(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"a.txt": {Data: []byte("a a a a a")},
	}))

	opts := bracketOptions()
	opts.MaxMatchesPerFile = 2
	results, err := engine.Search(context.Background(), ".", "a", types.ModeLiteral, opts)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Matches, 2)
}

func TestSearch_SkipsBinaryAndLargeFiles(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"a.txt":     {Data: []byte("needle")},
		"b.png":     {Data: []byte("needle")},
		"c.dat":     {Data: []byte("needle\x00")},
		"d/big.txt": {Data: []byte("needle and a lot more text")},
	}))

	opts := DefaultOptions()
	opts.MaxFileSize = 10
	results, stats, err := engine.SearchWithStats(context.Background(), ".", "needle", types.ModeLiteral, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, paths(results))
	assert.Equal(t, int64(3), stats.FilesSkipped)
	assert.Equal(t, int64(0), stats.UnreadableFiles)
}

func TestSearch_TextWithSignatureLikeStart(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"notes.txt": {Data: []byte("MZ notes: hello team")},
		"pdf.txt":   {Data: []byte("%PDF-style hello memo")},
		"gif.txt":   {Data: []byte("GIF89 says hello")},
	}))

	results, stats, err := engine.SearchWithStats(context.Background(), ".", "hello", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gif.txt", "notes.txt", "pdf.txt"}, paths(results))
	assert.Equal(t, int64(0), stats.FilesSkipped)
}

func TestSearch_ParallelMatchesSequential(t *testing.T) {
	mapFS := fstest.MapFS{}
	for i := 0; i < 60; i++ {
		dir := fmt.Sprintf("dir%02d", i%7)
		content := "filler"
		if i%3 != 0 {
			content = fmt.Sprintf("needle %d and needle again", i)
		}
		mapFS[fmt.Sprintf("%s/sub%d/file%02d.txt", dir, i%2, i)] = &fstest.MapFile{Data: []byte(content)}
	}
	engine := NewEngine(fsys.FromFS(mapFS))

	sequential, seqStats, err := engine.SearchWithStats(context.Background(), ".", "needle", types.ModeLiteral, DefaultOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Parallel = true
	opts.Workers = 4
	parallel, parStats, err := engine.SearchWithStats(context.Background(), ".", "needle", types.ModeLiteral, opts)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	assert.Equal(t, seqStats.TotalMatches, parStats.TotalMatches)
	assert.Equal(t, int64(60), parStats.FilesVisited)
	assert.Equal(t, int64(40), parStats.FilesMatched)
}

func TestSearch_SortByPath(t *testing.T) {
	engine := NewEngine(fsys.FromFS(fstest.MapFS{
		"b.txt":   {Data: []byte("x")},
		"a/z.txt": {Data: []byte("x")},
		"a.txt":   {Data: []byte("x")},
	}))

	opts := DefaultOptions()
	opts.SortByPath = true
	results, err := engine.Search(context.Background(), ".", "x", types.ModeLiteral, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "a/z.txt", "b.txt"}, paths(results))
}

// cancelingFS cancels the search as soon as the first file is read
type cancelingFS struct {
	fsys.FileSystem
	cancel context.CancelFunc
}

func (c *cancelingFS) ReadFile(name string) ([]byte, error) {
	c.cancel()
	return c.FileSystem.ReadFile(name)
}

func TestSearch_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(fsys.FromFS(nestedFS()))
	_, err := engine.Search(ctx, ".", "x", types.ModeLiteral, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)

	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			counting := fsystest.NewCountingFS(&cancelingFS{FileSystem: fsys.FromFS(nestedFS()), cancel: cancel})
			opts := DefaultOptions()
			opts.Parallel = parallel
			opts.Workers = 1

			results, err := NewEngine(counting).Search(ctx, ".", "x", types.ModeLiteral, opts)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Nil(t, results)
			assert.Less(t, counting.ReadFileCalls(), int64(5))
		})
	}
}

func TestSearchFile(t *testing.T) {
	faulty := fsystest.NewFaultyFS(fsys.FromFS(fstest.MapFS{
		"a.txt": {Data: []byte("hello world hello")},
		"b.txt": {Data: []byte("hello")},
	})).FailRead("b.txt", fs.ErrPermission)
	engine := NewEngine(faulty)

	q, err := engine.Compile("hello", types.ModeLiteral, false)
	require.NoError(t, err)

	results, err := engine.SearchFile(context.Background(), "a.txt", q, bracketOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"[hello] w", "d [hello]"}, results[0].Matches)

	_, err = engine.SearchFile(context.Background(), "b.txt", q, bracketOptions())
	assert.ErrorIs(t, err, lderrors.ErrFileUnreadable)

	none, err := engine.Compile("absent", types.ModeLiteral, false)
	require.NoError(t, err)
	results, err = engine.SearchFile(context.Background(), "a.txt", none, bracketOptions())
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = engine.SearchFile(context.Background(), "a.txt", Query{}, bracketOptions())
	assert.ErrorIs(t, err, lderrors.ErrInvalidQuery)
}

func TestSearch_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.txt"), []byte("needle"), 0644))
	if err := os.Symlink(root, filepath.Join(sub, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	engine := NewEngine(fsys.OS())
	for _, follow := range []bool{false, true} {
		opts := DefaultOptions()
		opts.FollowSymlinks = follow
		results, err := engine.Search(context.Background(), root, "needle", types.ModeLiteral, opts)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(sub, "a.txt")}, paths(results), "follow=%v", follow)
	}
}

func BenchmarkSearch(b *testing.B) {
	mapFS := fstest.MapFS{}
	for i := 0; i < 100; i++ {
		mapFS[fmt.Sprintf("d%d/f%d.txt", i%10, i)] = &fstest.MapFile{Data: []byte("lorem ipsum needle dolor sit amet needle")}
	}
	engine := NewEngine(fsys.FromFS(mapFS))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, ".", "needle", types.ModeLiteral, DefaultOptions()); err != nil {
			b.Fatal(err)
		}
	}
}
