package search

import (
	"strings"

	"github.com/standardbeagle/lds/internal/debug"
)

// Wrap renders one highlighted snippet: up to window bytes of context on each
// side of span, the match itself between prefix and postfix. A context side that
// cannot be sliced degrades to empty text instead of failing the match.
func Wrap(text string, span Span, window int, prefix, postfix string) string {
	if window < 0 {
		window = 0
	}

	// compare before subtracting or adding so huge windows cannot overflow
	leftStart := 0
	if window < span.Start {
		leftStart = span.Start - window
	}
	left, err := SafeSlice(text, leftStart, span.Start)
	if err != nil {
		debug.LogSearch("left context dropped: %v\n", err)
		left = ""
	}

	rightEnd := len(text)
	if window < len(text)-span.End {
		rightEnd = span.End + window
	}
	right, err := SafeSlice(text, span.End, rightEnd)
	if err != nil {
		debug.LogSearch("right context dropped: %v\n", err)
		right = ""
	}

	var sb strings.Builder
	sb.Grow(len(left) + len(prefix) + span.Len() + len(postfix) + len(right))
	sb.WriteString(left)
	sb.WriteString(prefix)
	sb.WriteString(text[span.Start:span.End])
	sb.WriteString(postfix)
	sb.WriteString(right)
	return sb.String()
}

// SnippetOptions controls how matches are rendered
type SnippetOptions struct {
	ContextWindow int    // bytes of context on each side
	Prefix        string // inserted before the matched text
	Postfix       string // inserted after the matched text
	Limit         int    // maximum snippets, 0 = unlimited
}

// FindSnippets locates every match of q in text and wraps each one.
func FindSnippets(text string, q Query, opts SnippetOptions) []string {
	var snippets []string
	for span := range q.Find(text) {
		snippets = append(snippets, Wrap(text, span, opts.ContextWindow, opts.Prefix, opts.Postfix))
		if opts.Limit > 0 && len(snippets) >= opts.Limit {
			break
		}
	}
	return snippets
}
