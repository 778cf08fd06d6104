// Package pathutil converts result paths for display.
//
// The engine reports paths joined onto the search root exactly as it was given.
// User-facing output may prefer paths relative to that root; this package is the
// conversion layer applied at output boundaries (CLI, MCP responses).
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lds/internal/search"
)

// ToRelative converts path to be relative to rootDir.
// Falls back to the original path if conversion fails, if exactly one of the two
// is absolute, or if the path lies outside the root.
//
// Examples:
//   - ToRelative("/home/user/docs/guide/intro.md", "/home/user/docs") → "guide/intro.md"
//   - ToRelative("/other/notes.txt", "/home/user/docs") → "/other/notes.txt" (outside root)
//   - ToRelative("docs/a.txt", "docs") → "a.txt"
func ToRelative(path, rootDir string) string {
	if path == "" || rootDir == "" {
		return path
	}

	// Mixed absolute/relative inputs cannot be compared without the working directory
	if filepath.IsAbs(path) != filepath.IsAbs(rootDir) {
		return path
	}

	path = filepath.Clean(path)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, path)
	if err != nil {
		// e.g. different drives on Windows
		return path
	}

	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return path
	}

	return relPath
}

// ToRelativeResults converts the paths of results relative to rootDir.
// Creates a new slice without modifying the original results.
func ToRelativeResults(results []search.FileResult, rootDir string) []search.FileResult {
	if len(results) == 0 {
		return results
	}

	converted := make([]search.FileResult, len(results))
	copy(converted, results)

	for i := range converted {
		converted[i].Path = ToRelative(converted[i].Path, rootDir)
	}

	return converted
}
