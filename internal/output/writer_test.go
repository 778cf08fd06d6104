package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lds/internal/metrics"
	"github.com/standardbeagle/lds/internal/search"
)

func sampleResults() []search.FileResult {
	return []search.FileResult{
		{Path: "docs/a.txt", Matches: []string{"[hello] w", "d [hello]"}},
		{Path: "docs/b.html", Matches: []string{"say [hello] & bye"}},
	}
}

func TestNewReport(t *testing.T) {
	report := NewReport(sampleResults(), nil)
	assert.Equal(t, 2, report.TotalFiles)
	assert.Equal(t, 3, report.TotalMatches)
	assert.Nil(t, report.Stats)

	empty := NewReport(nil, nil)
	assert.NotNil(t, empty.Results)
	assert.Zero(t, empty.TotalMatches)
}

func TestWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Prefix: "[", Postfix: "]"})
	require.NoError(t, w.Write(NewReport(sampleResults(), nil)))

	expected := "docs/a.txt\n" +
		"  [hello] w\n" +
		"  d [hello]\n" +
		"docs/b.html\n" +
		"  say [hello] & bye\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_TextMultilineSnippet(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Prefix: "[", Postfix: "]"})
	results := []search.FileResult{
		{Path: "notes.txt", Matches: []string{"first\n[hello]\nlast", "dos\r\n[hello]"}},
	}
	require.NoError(t, w.Write(NewReport(results, nil)))

	expected := "notes.txt\n" +
		"  first\n" +
		"    [hello]\n" +
		"    last\n" +
		"  dos\n" +
		"    [hello]\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_TextStats(t *testing.T) {
	var buf bytes.Buffer
	stats := metrics.SearchStats{FilesVisited: 4, FilesMatched: 2, TotalMatches: 3}
	w := NewWriter(&buf, Options{Format: FormatText})
	require.NoError(t, w.Write(NewReport(sampleResults(), &stats)))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, stats.String(), lines[len(lines)-1])
}

func TestWriter_TextColor(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Color: true, Prefix: "<b>", Postfix: "</b>"})
	results := []search.FileResult{{Path: "a.md", Matches: []string{"x <b>one</b> y <b>two</b> <b>open"}}}
	require.NoError(t, w.Write(NewReport(results, nil)))

	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "two")
	assert.NotContains(t, out, "<b>one</b>")
	assert.Contains(t, out, "<b>open", "unterminated prefix is left as is")
}

func TestWriter_Highlight(t *testing.T) {
	plain := NewWriter(nil, Options{Prefix: "[", Postfix: "]"})
	assert.Equal(t, "a [b] c", plain.highlight("a [b] c"))

	noDelims := NewWriter(nil, Options{Color: true})
	assert.Equal(t, "a [b] c", noDelims.highlight("a [b] c"))

	colored := NewWriter(nil, Options{Color: true, Prefix: "[", Postfix: "]"})
	got := colored.highlight("a [b] c [d]")
	assert.True(t, strings.HasPrefix(got, "a \x1b["))
	assert.NotContains(t, got, "[b]")
	assert.NotContains(t, got, "[d]")
}

func TestWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	stats := metrics.SearchStats{FilesVisited: 2, Elapsed: time.Millisecond}
	w := NewWriter(&buf, Options{Format: FormatJSON})
	require.NoError(t, w.Write(NewReport(sampleResults(), &stats)))

	assert.Contains(t, buf.String(), `"say [hello] & bye"`, "HTML characters are not escaped")

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleResults(), decoded.Results)
	assert.Equal(t, 2, decoded.TotalFiles)
	assert.Equal(t, 3, decoded.TotalMatches)
	require.NotNil(t, decoded.Stats)
	assert.Equal(t, int64(2), decoded.Stats.FilesVisited)
}

func TestWriter_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, Options{Format: FormatJSON}).Write(NewReport(nil, nil)))
	assert.Contains(t, buf.String(), `"results": []`)
	assert.NotContains(t, buf.String(), "stats")
}

func TestWriter_TOML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Options{Format: FormatTOML})
	require.NoError(t, w.Write(NewReport(sampleResults(), nil)))

	assert.Contains(t, buf.String(), "[[results]]")

	var decoded Report
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleResults(), decoded.Results)
	assert.Equal(t, 3, decoded.TotalMatches)
}

func TestWriter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf, Options{Format: "yaml"}).Write(NewReport(nil, nil))
	assert.Error(t, err)
}
