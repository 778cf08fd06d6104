package search

import (
	"errors"
	"iter"
	"regexp"
	"strings"

	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/pattern"
	"github.com/standardbeagle/lds/internal/types"
)

// Span is the byte range of one match within a file's extracted text.
// Invariant: 0 <= Start <= End <= len(text).
type Span struct {
	Start int
	End   int
}

// Len returns the length of the span in bytes
func (s Span) Len() int {
	return s.End - s.Start
}

// Query is either a compiled pattern or a literal substring. Exactly one is
// active; Find branches on the mode so the rest of the pipeline never needs to.
type Query struct {
	mode    types.Mode
	raw     string
	literal string
	re      *regexp.Regexp
}

// ErrEmptyLiteral is the cause reported for empty literal-mode queries
var ErrEmptyLiteral = errors.New("literal query must not be empty")

// NewLiteralQuery creates a literal-mode query. Empty needles are rejected since
// they would match at every offset.
func NewLiteralQuery(literal string) (Query, error) {
	if literal == "" {
		return Query{}, lderrors.NewQueryError(literal, ErrEmptyLiteral)
	}
	return Query{mode: types.ModeLiteral, raw: literal, literal: literal}, nil
}

// NewPatternQuery wraps an already compiled pattern. A pattern that can only
// match one fixed string is searched with the literal matcher; the spans are
// the same.
func NewPatternQuery(re *regexp.Regexp) Query {
	q := Query{mode: types.ModePattern, raw: re.String(), re: re}
	if lit, ok := pattern.LiteralEquivalent(re); ok {
		q.literal = lit
	}
	return q
}

// CompileQuery builds a Query for the given mode. Pattern compilation goes
// through compiler so repeated searches reuse the compiled form; a nil compiler
// compiles without caching.
func CompileQuery(raw string, mode types.Mode, caseInsensitive bool, compiler *pattern.Compiler) (Query, error) {
	if mode == types.ModeLiteral {
		return NewLiteralQuery(raw)
	}

	if compiler == nil {
		compiler = pattern.NewCompiler(1)
	}
	re, err := compiler.Compile(raw, caseInsensitive)
	if err != nil {
		return Query{}, err
	}
	q := NewPatternQuery(re)
	q.raw = raw
	return q, nil
}

// Mode returns the active matching mode
func (q Query) Mode() types.Mode {
	return q.mode
}

// String returns the query as the user supplied it
func (q Query) String() string {
	return q.raw
}

// IsZero reports whether q was never initialized
func (q Query) IsZero() bool {
	return q.literal == "" && q.re == nil
}

// Find yields every match in text left to right without overlaps.
func (q Query) Find(text string) iter.Seq[Span] {
	if q.mode == types.ModePattern && q.literal == "" {
		return q.findPattern(text)
	}
	return q.findLiteral(text)
}

// FindAll collects up to limit spans (limit <= 0 means all)
func (q Query) FindAll(text string, limit int) []Span {
	var spans []Span
	for span := range q.Find(text) {
		spans = append(spans, span)
		if limit > 0 && len(spans) >= limit {
			break
		}
	}
	return spans
}

// Count returns the number of matches in text
func (q Query) Count(text string) int {
	n := 0
	for range q.Find(text) {
		n++
	}
	return n
}

// findLiteral searches the remainder after each match and keeps a running
// offset so spans are expressed in original-text coordinates.
func (q Query) findLiteral(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if q.literal == "" {
			return
		}
		offset := 0
		rest := text
		for {
			idx := strings.Index(rest, q.literal)
			if idx < 0 {
				return
			}
			start := offset + idx
			end := start + len(q.literal)
			if !yield(Span{Start: start, End: end}) {
				return
			}
			rest = rest[idx+len(q.literal):]
			offset = end
		}
	}
}

// firstPatternBatch is the number of matches requested before the first yield
const firstPatternBatch = 16

// findPattern relies on the regexp package for non-overlap. After an empty
// match the matcher advances by one character, so iteration always terminates.
//
// Matches are requested in doubling batches, each scan starting at the
// beginning of text: restarting at a cursor would hide the preceding byte
// from \b and (?m)^. A consumer that stops early never scans past the batch
// it stopped in, and the rescans cost at most one extra full scan.
func (q Query) findPattern(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if q.re == nil {
			return
		}
		seen := 0
		for batch := firstPatternBatch; ; batch *= 2 {
			locs := q.re.FindAllStringIndex(text, batch)
			for _, loc := range locs[seen:] {
				if !yield(Span{Start: loc[0], End: loc[1]}) {
					return
				}
			}
			if len(locs) < batch {
				return
			}
			seen = len(locs)
		}
	}
}
