package search

import (
	"unicode/utf8"

	lderrors "github.com/standardbeagle/lds/internal/errors"
)

// SafeSlice returns text[start:end] adjusted so that neither end splits a
// multi-byte character: start moves forward to the next boundary (never past
// end) and end moves back to the previous boundary (never below start).
//
// Context windows are measured in bytes, so for non-ASCII text the ideal
// window edges regularly land inside a character.
func SafeSlice(text string, start, end int) (string, error) {
	n := len(text)
	if start < 0 || end > n || start > end {
		return "", lderrors.NewRangeError(start, end, n)
	}

	s := start
	for s < end && !isBoundary(text, s) {
		s++
	}

	e := end
	for e > s && !isBoundary(text, e) {
		e--
	}

	if s > e {
		return "", lderrors.NewRangeError(s, e, n)
	}

	out := text[s:e]
	if !utf8.ValidString(out) {
		return "", lderrors.NewRangeError(s, e, n)
	}
	return out, nil
}

func isBoundary(text string, i int) bool {
	return i == 0 || i == len(text) || utf8.RuneStart(text[i])
}
