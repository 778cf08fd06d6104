// Package extract turns a file into searchable text: markup-like files are
// normalized, everything else is read as is. Binary and oversized files are
// skipped with a typed reason.
package extract

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lds/internal/debug"
	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/fsys"
	"github.com/standardbeagle/lds/internal/markup"
)

// Options controls extraction
type Options struct {
	Rules       markup.Rules // markup-like extensions; nil means none
	MaxFileSize int64        // 0 disables the limit
	SkipBinary  bool
	Cache       *TextCache // shared normalized-text cache, optional
}

// Document is the extracted text of one file
type Document struct {
	Path   string
	Text   string
	Size   int  // raw bytes read
	Markup bool // text was produced by the markup normalizer
	Cached bool // text came from the cache
}

// Extractor reads files through a FileSystem
type Extractor struct {
	fsys     fsys.FileSystem
	opts     Options
	detector *BinaryDetector
}

// New creates an extractor
func New(fs fsys.FileSystem, opts Options) *Extractor {
	return &Extractor{
		fsys:     fs,
		opts:     opts,
		detector: NewBinaryDetector(),
	}
}

// Extract returns the searchable text of path
func (e *Extractor) Extract(path string) (string, error) {
	doc, err := e.Load(path)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// Load reads and normalizes path. Read failures are *errors.FileError; skipped
// files return an error wrapping ErrBinaryFile or ErrFileTooLarge.
func (e *Extractor) Load(path string) (Document, error) {
	if e.opts.SkipBinary && e.detector.IsBinaryByExtension(path) {
		return Document{}, fmt.Errorf("%s: %w", path, lderrors.ErrBinaryFile)
	}

	if e.opts.MaxFileSize > 0 {
		info, err := e.fsys.Stat(path)
		if err != nil {
			return Document{}, lderrors.NewFileError("stat", path, err)
		}
		if info.Size() > e.opts.MaxFileSize {
			return Document{}, fmt.Errorf("%s (%d bytes, limit %d): %w", path, info.Size(), e.opts.MaxFileSize, lderrors.ErrFileTooLarge)
		}
	}

	raw, err := e.fsys.ReadFile(path)
	if err != nil {
		return Document{}, lderrors.NewFileError("read", path, err)
	}

	if e.opts.SkipBinary && e.detector.IsBinaryContent(raw) {
		return Document{}, fmt.Errorf("%s: %w", path, lderrors.ErrBinaryFile)
	}

	doc := Document{Path: path, Size: len(raw)}

	rule, isMarkup := e.opts.Rules.Lookup(path)
	if !isMarkup {
		doc.Text = strings.ToValidUTF8(string(raw), "�")
		return doc, nil
	}
	doc.Markup = true

	var key cacheKey
	if e.opts.Cache != nil {
		key = cacheKey{content: xxhash.Sum64(raw), rule: ruleFingerprint(rule)}
		if text, ok := e.opts.Cache.get(key); ok {
			doc.Text = text
			doc.Cached = true
			return doc, nil
		}
	}

	text, err := rule.Normalize([]byte(strings.ToValidUTF8(string(raw), "�")))
	if err != nil {
		return Document{}, lderrors.NewFileError("normalize", path, err)
	}
	debug.LogMarkup("normalized %s: %d -> %d bytes\n", path, len(raw), len(text))

	if e.opts.Cache != nil {
		e.opts.Cache.put(key, text)
	}
	doc.Text = text
	return doc, nil
}
