// Package pattern compiles pattern-mode queries once and reuses them across
// search invocations.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"

	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/types"
)

// Compiler compiles query expressions into RE2 patterns with an LRU cache in front.
type Compiler struct {
	cache      *Cache
	classifier *Classifier
}

// NewCompiler creates a compiler with a cache of the given size
func NewCompiler(cacheSize int) *Compiler {
	if cacheSize <= 0 {
		cacheSize = types.DefaultPatternCacheSize
	}
	return &Compiler{
		cache:      NewCache(cacheSize, types.MaxCachedPatternLength),
		classifier: NewClassifier(),
	}
}

// Compile returns the compiled form of expr. Syntax errors are reported as
// *errors.QueryError so callers can treat them as fatal before any traversal.
func (c *Compiler) Compile(expr string, caseInsensitive bool) (*regexp.Regexp, error) {
	key := cacheKey(expr, caseInsensitive)
	if re := c.cache.Get(key); re != nil {
		return re, nil
	}

	source := expr
	if caseInsensitive {
		source = "(?i)" + expr
	}

	re, err := regexp.Compile(source)
	if err != nil {
		if hint := c.classifier.Hint(expr); hint != "" {
			err = fmt.Errorf("%w (%s)", err, hint)
		} else if !c.classifier.IsBalanced(expr) {
			err = fmt.Errorf("%w (unbalanced brackets or parentheses)", err)
		}
		return nil, lderrors.NewQueryError(expr, err)
	}

	c.cache.Put(key, re)
	return re, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and constants.
func (c *Compiler) MustCompile(expr string) *regexp.Regexp {
	re, err := c.Compile(expr, false)
	if err != nil {
		panic(err)
	}
	return re
}

// Stats exposes the underlying cache statistics
func (c *Compiler) Stats() CacheStats {
	return c.cache.Stats()
}

// LiteralEquivalent returns the string a compiled pattern matches when the
// pattern is nothing but one case-sensitive literal. Anchors, boundaries and
// case folding all disqualify it.
func LiteralEquivalent(re *regexp.Regexp) (string, bool) {
	if re == nil {
		return "", false
	}
	parsed, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil {
		return "", false
	}
	parsed = parsed.Simplify()
	if parsed.Op != syntax.OpLiteral || parsed.Flags&syntax.FoldCase != 0 || len(parsed.Rune) == 0 {
		return "", false
	}
	return string(parsed.Rune), true
}

// IsQueryError reports whether err came from a failed compilation
func IsQueryError(err error) bool {
	return errors.Is(err, lderrors.ErrInvalidQuery)
}

func cacheKey(expr string, caseInsensitive bool) string {
	if caseInsensitive {
		return "i:" + expr
	}
	return "s:" + expr
}
