package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/lds/internal/types"
)

// BinaryDetector rejects files that cannot contain searchable text. Extension
// checks need no I/O; content checks only look at the first bytes.
type BinaryDetector struct {
	binaryExtensions map[string]struct{}
}

// Document formats such as .pdf and .docx are containers, not text, and are
// skipped like any other binary.
var defaultBinaryExtensions = []string{
	// fonts
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	// images (svg is XML and stays searchable)
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".webp", ".tiff", ".tif",
	// archives
	".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".rar", ".jar", ".war", ".epub",
	// executables and objects
	".exe", ".dll", ".so", ".dylib", ".a", ".o", ".obj", ".bin", ".wasm",
	// media
	".mp3", ".mp4", ".avi", ".mov", ".wmv", ".flv", ".wav", ".flac", ".ogg", ".mkv",
	// office documents
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".odt",
	// databases
	".db", ".sqlite", ".sqlite3",
	// bytecode and serialized objects
	".pyc", ".pyo", ".class", ".pickle", ".pkl",
}

// magicNumbers are file signatures checked against the start of the content.
// Only signatures containing a non-printable byte are listed: all-ASCII ones
// such as "%PDF", "GIF8" or "MZ" also open ordinary prose. Files of those
// formats are still caught by extension or by the control byte sniff.
var magicNumbers = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x50, 0x4B, 0x05, 0x06}, // empty zip
	{0x89, 0x50, 0x4E, 0x47}, // png
	{0xFF, 0xD8, 0xFF},       // jpeg
	{0x7F, 0x45, 0x4C, 0x46}, // elf
	{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o / java class
	{0x00, 0x61, 0x73, 0x6D}, // wasm
}

// NewBinaryDetector creates a detector with the default extension list
func NewBinaryDetector() *BinaryDetector {
	exts := make(map[string]struct{}, len(defaultBinaryExtensions))
	for _, ext := range defaultBinaryExtensions {
		exts[ext] = struct{}{}
	}
	return &BinaryDetector{binaryExtensions: exts}
}

// IsBinaryByExtension checks the lowercased extension of path
func (bd *BinaryDetector) IsBinaryByExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := bd.binaryExtensions[ext]
	return ok
}

// IsBinaryContent inspects up to BinaryPreCheckBytes of content: known
// signatures, any NUL byte, or mostly control characters. Bytes >= 0x80 are
// not counted so UTF-8 text is never rejected.
func (bd *BinaryDetector) IsBinaryContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sample := content
	if len(sample) > types.BinaryPreCheckBytes {
		sample = sample[:types.BinaryPreCheckBytes]
	}

	for _, magic := range magicNumbers {
		if bytes.HasPrefix(sample, magic) {
			return true
		}
	}

	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control > len(sample)*30/100
}

// IsBinary combines both checks, extension first
func (bd *BinaryDetector) IsBinary(path string, content []byte) bool {
	return bd.IsBinaryByExtension(path) || bd.IsBinaryContent(content)
}
