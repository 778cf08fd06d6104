package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lds/internal/markup"
	"github.com/standardbeagle/lds/internal/types"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, types.DefaultContextWindow, cfg.Search.Context)
	assert.Equal(t, "<b>", cfg.Search.Prefix)
	assert.Equal(t, "</b>", cfg.Search.Postfix)
	assert.False(t, cfg.Search.Regex)
	assert.Equal(t, markup.DefaultRules(), cfg.Markup)
	assert.Equal(t, int64(types.DefaultMaxFileSize), cfg.Walk.MaxFileSize)
	assert.True(t, cfg.Walk.SkipBinary)
	assert.Contains(t, cfg.Exclude, "**/.git/**")
}

func TestParseKDL_AllSections(t *testing.T) {
	kdlContent := `
version 1
project {
    root "docs"
}
search {
    context 20
    prefix "[["
    postfix "]]"
    regex true
    ignore_case true
    max_per_file 5
    format "json"
}
markup {
    ext "xml" "head"
    markdown "md"
    disable "htm"
}
walk {
    max_file_size "2MB"
    skip_binary false
    parallel true
    workers 3
    sort true
    follow_symlinks true
    respect_gitignore false
}
watch {
    debounce_ms 150
}
include "**/*.md" "**/*.html"
exclude "**/drafts/**"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Project.Root)
	assert.Equal(t, Search{Context: 20, Prefix: "[[", Postfix: "]]", Regex: true, IgnoreCase: true, MaxPerFile: 5, Format: "json"}, cfg.Search)

	assert.Equal(t, markup.Rule{Kind: markup.KindHTML, Tags: []string{"head"}}, cfg.Markup["xml"])
	assert.Equal(t, markup.Rule{Kind: markup.KindMarkdown, Tags: markup.DefaultTags}, cfg.Markup["md"])
	_, hasHTM := cfg.Markup["htm"]
	assert.False(t, hasHTM)
	assert.Contains(t, cfg.Markup, "html", "defaults are kept without reset")

	assert.Equal(t, Walk{MaxFileSize: 2 * 1024 * 1024, Parallel: true, Workers: 3, Sort: true, FollowSymlinks: true}, cfg.Walk)
	assert.Equal(t, 150, cfg.Watch.DebounceMs)
	assert.Equal(t, []string{"**/*.md", "**/*.html"}, cfg.Include)
	assert.Equal(t, []string{"**/drafts/**"}, cfg.Exclude)
	assert.Equal(t, types.ModePattern, cfg.Mode())
}

func TestParseKDL_MarkupReset(t *testing.T) {
	cfg, err := parseKDL(`
markup {
    reset
    ext "xrtm" "head" "script" "scalable_block"
}
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"xrtm"}, cfg.Markup.Extensions())
}

func TestParseKDL_BlockExclude(t *testing.T) {
	cfg, err := parseKDL(`
exclude {
    "**/a/**"
    "**/b/**"
}
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/a/**", "**/b/**"}, cfg.Exclude)
}

func TestParseKDL_Errors(t *testing.T) {
	_, err := parseKDL(`search {`)
	assert.Error(t, err)

	_, err = parseKDL(`markup { ext }`)
	assert.Error(t, err)

	_, err = parseKDL(`markup { bogus "x" }`)
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"500kb", 500 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"42B", 42},
		{"42", 42},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}

func TestWriteKDL_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Search.Prefix = `<mark class="hit">`
	cfg.Search.Regex = true
	cfg.Markup["md"] = markup.Rule{Kind: markup.KindMarkdown, Tags: []string{"script"}}
	cfg.Include = []string{"**/*.md"}
	cfg.Walk.Workers = 2

	var buf bytes.Buffer
	require.NoError(t, cfg.WriteKDL(&buf))

	parsed, err := parseKDL(buf.String())
	require.NoError(t, err)

	assert.Equal(t, cfg.Search, parsed.Search)
	assert.Equal(t, cfg.Markup, parsed.Markup)
	assert.Equal(t, cfg.Walk, parsed.Walk)
	assert.Equal(t, cfg.Watch, parsed.Watch)
	assert.Equal(t, cfg.Include, parsed.Include)
	assert.Equal(t, cfg.Exclude, parsed.Exclude)
}

func TestLoadKDL(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg, "missing file yields no config")

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`search { context 7 }`), 0644))
	cfg, err = LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 7, cfg.Search.Context)
	assert.Equal(t, mustAbs(dir), cfg.Project.Root)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`project { root "sub" }`), 0644))
	cfg, err = LoadKDL(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(mustAbs(dir), "sub"), cfg.Project.Root)
}
