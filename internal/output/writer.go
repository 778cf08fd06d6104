package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/lds/internal/metrics"
	"github.com/standardbeagle/lds/internal/search"
)

// Report is the document written for one search
type Report struct {
	Results      []search.FileResult  `json:"results" toml:"results"`
	TotalFiles   int                  `json:"total_files" toml:"total_files"`
	TotalMatches int                  `json:"total_matches" toml:"total_matches"`
	Stats        *metrics.SearchStats `json:"stats,omitempty" toml:"stats,omitempty"`
}

// NewReport builds a report; stats may be nil
func NewReport(results []search.FileResult, stats *metrics.SearchStats) Report {
	if results == nil {
		results = []search.FileResult{}
	}
	return Report{
		Results:      results,
		TotalFiles:   len(results),
		TotalMatches: search.TotalMatches(results),
		Stats:        stats,
	}
}

// Options configures a Writer
type Options struct {
	Format Format
	Color  bool
	// Prefix and Postfix are the match delimiters used by the search. With color
	// enabled the delimited text is highlighted and the delimiters are dropped.
	Prefix  string
	Postfix string
}

// Writer renders reports to an io.Writer
type Writer struct {
	w       io.Writer
	opts    Options
	palette *palette
}

// NewWriter creates a writer; an empty format means text
func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Writer{w: w, opts: opts, palette: newPalette(opts.Color)}
}

// Write renders one report in the configured format
func (wr *Writer) Write(report Report) error {
	switch wr.opts.Format {
	case FormatJSON:
		return wr.writeJSON(report)
	case FormatTOML:
		return wr.writeTOML(report)
	case FormatText:
		return wr.writeText(report)
	default:
		return fmt.Errorf("unknown output format %q", wr.opts.Format)
	}
}

func (wr *Writer) writeJSON(report Report) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

func (wr *Writer) writeTOML(report Report) error {
	enc := toml.NewEncoder(wr.w)
	enc.SetIndentTables(true)
	return enc.Encode(report)
}

// continuationIndent prefixes the second and later lines of a multi-line
// snippet so they cannot be mistaken for the next snippet
const continuationIndent = "    "

var lineBreaks = strings.NewReplacer("\r\n", "\n"+continuationIndent, "\n", "\n"+continuationIndent, "\r", "\n"+continuationIndent)

// writeText prints each path followed by its snippets indented by two spaces
func (wr *Writer) writeText(report Report) error {
	var b strings.Builder
	for _, r := range report.Results {
		b.WriteString(wr.palette.path.Sprint(r.Path))
		b.WriteByte('\n')
		for _, m := range r.Matches {
			b.WriteString("  ")
			b.WriteString(lineBreaks.Replace(wr.highlight(m)))
			b.WriteByte('\n')
		}
	}
	if report.Stats != nil {
		b.WriteString(wr.palette.stats.Sprint(report.Stats.String()))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(wr.w, b.String())
	return err
}

// highlight colors every prefix...postfix span of a snippet. Without color, or
// without both delimiters, the snippet is returned unchanged.
func (wr *Writer) highlight(snippet string) string {
	prefix, postfix := wr.opts.Prefix, wr.opts.Postfix
	if !wr.opts.Color || prefix == "" || postfix == "" {
		return snippet
	}

	var b strings.Builder
	rest := snippet
	for {
		start := strings.Index(rest, prefix)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(prefix):], postfix)
		if end < 0 {
			break
		}
		b.WriteString(rest[:start])
		inner := rest[start+len(prefix) : start+len(prefix)+end]
		b.WriteString(wr.palette.match.Sprint(inner))
		rest = rest[start+len(prefix)+end+len(postfix):]
	}
	b.WriteString(rest)
	return b.String()
}
