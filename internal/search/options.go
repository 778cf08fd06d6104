package search

import (
	"runtime"

	"github.com/standardbeagle/lds/internal/markup"
	"github.com/standardbeagle/lds/internal/types"
)

// Options are the presentation and traversal parameters of one search
type Options struct {
	ContextWindow int    // bytes of context on each side of a match
	Prefix        string // inserted before each match
	Postfix       string // inserted after each match

	Markup markup.Rules // markup-like extensions and their strip rules

	Include []string // doublestar globs relative to root, files only
	Exclude []string // doublestar globs relative to root, prunes directories

	MaxFileSize    int64 // 0 disables the limit
	SkipBinary     bool
	FollowSymlinks bool

	Parallel   bool
	Workers    int // parallel file workers, 0 = GOMAXPROCS
	SortByPath bool

	CaseInsensitive   bool // pattern mode only
	MaxMatchesPerFile int  // 0 = unlimited
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		ContextWindow: types.DefaultContextWindow,
		Prefix:        types.DefaultPrefix,
		Postfix:       types.DefaultPostfix,
		Markup:        markup.DefaultRules(),
		MaxFileSize:   types.DefaultMaxFileSize,
		SkipBinary:    true,
	}
}

func (o Options) snippetOptions() SnippetOptions {
	return SnippetOptions{
		ContextWindow: o.ContextWindow,
		Prefix:        o.Prefix,
		Postfix:       o.Postfix,
		Limit:         o.MaxMatchesPerFile,
	}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
