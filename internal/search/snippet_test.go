package search

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lds/internal/types"
)

func TestWrap(t *testing.T) {
	text := "hello world hello"

	testCases := []struct {
		name     string
		span     Span
		window   int
		expected string
	}{
		{"start of text", Span{0, 5}, 2, "[hello] w"},
		{"end of text", Span{12, 17}, 2, "d [hello]"},
		{"zero window", Span{6, 11}, 0, "[world]"},
		{"negative window", Span{6, 11}, -3, "[world]"},
		{"window larger than text", Span{6, 11}, 100, "hello [world] hello"},
		{"maximum window", Span{6, 11}, math.MaxInt, "hello [world] hello"},
		{"maximum window at end", Span{12, 17}, math.MaxInt, "hello world [hello]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Wrap(text, tc.span, tc.window, "[", "]"))
		})
	}
}

func TestWrap_MultibyteContext(t *testing.T) {
	text := "点语种: 中文,西班牙语"
	q, err := NewLiteralQuery("中文")
	require.NoError(t, err)

	spans := q.FindAll(text, 0)
	require.Len(t, spans, 1)

	// 3 bytes reach into the middle of the neighbouring characters on both sides
	got := Wrap(text, spans[0], 3, "<b>", "</b>")
	assert.Equal(t, ": <b>中文</b>,", got)
	assert.True(t, utf8.ValidString(got))
}

func TestFindSnippets(t *testing.T) {
	q, err := NewLiteralQuery("hello")
	require.NoError(t, err)

	snippets := FindSnippets("hello world hello", q, SnippetOptions{ContextWindow: 2, Prefix: "[", Postfix: "]"})
	assert.Equal(t, []string{"[hello] w", "d [hello]"}, snippets)

	limited := FindSnippets("hello world hello", q, SnippetOptions{ContextWindow: 2, Prefix: "[", Postfix: "]", Limit: 1})
	assert.Equal(t, []string{"[hello] w"}, limited)

	assert.Empty(t, FindSnippets("nothing here", q, SnippetOptions{}))
}

func TestFindSnippets_Pattern(t *testing.T) {
	q, err := CompileQuery(`co\S`, types.ModePattern, false, nil)
	require.NoError(t, err)

	snippets := FindSnippets("Unable to obtain core configuration", q, SnippetOptions{
		ContextWindow: types.DefaultContextWindow,
		Prefix:        types.DefaultPrefix,
		Postfix:       types.DefaultPostfix,
	})
	require.Len(t, snippets, 2)
	assert.Equal(t, "Unable to obtain <b>cor</b>e configuration", snippets[0])
	assert.Equal(t, "Unable to obtain core <b>con</b>figuration", snippets[1])
}

// With no context, each snippet is exactly prefix + match + postfix.
func TestProperty_ZeroWindowIsBareMatch(t *testing.T) {
	q, err := NewLiteralQuery("语")
	require.NoError(t, err)

	text := "点语种: 中文,西班牙语,英语,阿拉伯语"
	snippets := FindSnippets(text, q, SnippetOptions{Prefix: "<b>", Postfix: "</b>"})
	require.Len(t, snippets, q.Count(text))
	for _, s := range snippets {
		assert.Equal(t, "<b>语</b>", s)
	}
}

// Every snippet is valid UTF-8 and contains the wrapped match.
func TestProperty_SnippetsValidUTF8(t *testing.T) {
	text := strings.Repeat("世界！狂担负了 hello ", 10)
	q, err := NewLiteralQuery("hello")
	require.NoError(t, err)

	for window := 0; window < 12; window++ {
		for _, s := range FindSnippets(text, q, SnippetOptions{ContextWindow: window, Prefix: "<", Postfix: ">"}) {
			assert.True(t, utf8.ValidString(s))
			assert.Contains(t, s, "<hello>")
		}
	}
}
