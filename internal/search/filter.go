package search

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter applies include and exclude globs to root-relative, slash
// separated paths. Invalid patterns never match.
type PathFilter struct {
	include []string
	exclude []string
}

// NewPathFilter creates a filter. With no include patterns every file is
// included.
func NewPathFilter(include, exclude []string) *PathFilter {
	return &PathFilter{
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
	}
}

// IncludeFile reports whether a file at rel should be searched
func (f *PathFilter) IncludeFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	if f.matchAny(f.exclude, rel) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	return f.matchAny(f.include, rel)
}

// ExcludeDir reports whether the directory at rel should be pruned. A pattern
// ending in "/**" also prunes the directory it names.
func (f *PathFilter) ExcludeDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range f.exclude {
		if match(pattern, rel) {
			return true
		}
		if trimmed, ok := strings.CutSuffix(pattern, "/**"); ok && trimmed != "" && match(trimmed, rel) {
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no patterns at all
func (f *PathFilter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

func (f *PathFilter) matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if match(pattern, rel) {
			return true
		}
	}
	return false
}

func match(pattern, rel string) bool {
	matched, err := doublestar.Match(pattern, rel)
	return err == nil && matched
}
