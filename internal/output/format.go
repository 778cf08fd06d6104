// Package output renders search results for the CLI as highlighted text, JSON
// or TOML.
package output

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Format names an output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatJSON, FormatTOML}

// ParseFormat resolves a format name case-insensitively. Near misses get a
// suggestion in the error.
func ParseFormat(s string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if string(f) == normalized {
			return f, nil
		}
	}

	if suggestion, ok := closestFormat(normalized); ok {
		return "", fmt.Errorf("unknown output format %q (did you mean %q?)", s, suggestion)
	}
	return "", fmt.Errorf("unknown output format %q (expected text, json or toml)", s)
}

// closestFormat returns the format within edit distance 2 of input
func closestFormat(input string) (Format, bool) {
	best := Format("")
	bestDistance := 1000
	for _, f := range Formats {
		distance := edlib.LevenshteinDistance(input, string(f))
		if distance < bestDistance {
			bestDistance = distance
			best = f
		}
	}
	return best, bestDistance <= 2
}
