// Package markup turns HTML-like documents into plain text before searching.
//
// Stripping is rule based, not a DOM parse: line breaks become newlines, a fixed
// list of blocks is deleted, remaining tags are removed, whitespace is
// collapsed, and finally entities are decoded. Decoding runs last so decoded
// text is never re-matched as markup.
package markup

import (
	"html"
	"regexp"
	"sync"
)

var (
	lineBreakPattern = regexp.MustCompile(`<br[^>]*>`)
	anyTagPattern    = regexp.MustCompile(`<[^>]+>`)

	// Unicode White_Space; RE2's \s alone is ASCII only and misses \v
	whitespacePattern = regexp.MustCompile(`[\s\v\p{Zs}\x{85}\x{2028}\x{2029}]+`)

	// blockPatterns caches the deletion pattern per tag name
	blockPatterns sync.Map // map[string]*regexp.Regexp
)

// BlockCloser is the closing marker for every deleted block, whatever tag
// opened it. Kept for compatibility with documents produced for the historical
// rule set.
const BlockCloser = "</script>"

// Strip converts markup to plain text, deleting the blocks opened by each tag
// in tags first.
func Strip(markup string, tags []string) string {
	text := lineBreakPattern.ReplaceAllString(markup, "\n")

	for _, tag := range tags {
		if tag == "" {
			continue
		}
		text = blockPattern(tag).ReplaceAllString(text, "")
	}

	text = anyTagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return html.UnescapeString(text)
}

// blockPattern returns the compiled `<tag ...>...</script>` pattern for tag.
// The body match is non-greedy and does not cross newlines.
func blockPattern(tag string) *regexp.Regexp {
	if cached, ok := blockPatterns.Load(tag); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`<` + regexp.QuoteMeta(tag) + `[^>]*>(.*?)` + regexp.QuoteMeta(BlockCloser))
	actual, _ := blockPatterns.LoadOrStore(tag, re)
	return actual.(*regexp.Regexp)
}
