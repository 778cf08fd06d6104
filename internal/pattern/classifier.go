package pattern

import (
	"regexp"
)

// unsupportedConstruct pairs a detector with the hint shown to the user.
type unsupportedConstruct struct {
	detector *regexp.Regexp
	hint     string
}

// Classifier recognizes syntax that other regex dialects accept but RE2 rejects,
// so compile errors can carry an actionable hint.
type Classifier struct {
	constructs []unsupportedConstruct
}

// NewClassifier creates a classifier with the default construct table
func NewClassifier() *Classifier {
	return &Classifier{
		constructs: []unsupportedConstruct{
			{regexp.MustCompile(`\(\?[=!]`), "lookahead assertions are not supported"},
			{regexp.MustCompile(`\(\?<[=!]`), "lookbehind assertions are not supported"},
			{regexp.MustCompile(`\\[1-9]`), "backreferences are not supported"},
			{regexp.MustCompile(`\(\?>`), "atomic groups are not supported"},
			{regexp.MustCompile(`[*+?}]\+`), "possessive quantifiers are not supported"},
			{regexp.MustCompile(`\(\?R\)|\(\?0\)`), "recursive patterns are not supported"},
			{regexp.MustCompile(`\(\?\(`), "conditional groups are not supported"},
		},
	}
}

// Hint returns a human readable explanation for an expression that uses an
// unsupported construct, or "" when nothing is recognized.
func (c *Classifier) Hint(expr string) string {
	for _, construct := range c.constructs {
		if construct.detector.MatchString(expr) {
			return construct.hint
		}
	}
	return ""
}

// IsBalanced reports whether parentheses and brackets are balanced, honoring
// escapes and character classes.
func (c *Classifier) IsBalanced(expr string) bool {
	parens := 0
	inCharClass := false
	escaped := false

	for _, r := range expr {
		if escaped {
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case '[':
			inCharClass = true
		case ']':
			inCharClass = false
		case '(':
			if !inCharClass {
				parens++
			}
		case ')':
			if !inCharClass {
				parens--
				if parens < 0 {
					return false
				}
			}
		}
	}

	return parens == 0 && !inCharClass && !escaped
}
