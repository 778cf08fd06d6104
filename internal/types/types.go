package types

// Common system-wide constants
const (
	// Snippet defaults
	DefaultContextWindow = 50 // bytes of context on each side of a match
	DefaultPrefix        = "<b>"
	DefaultPostfix       = "</b>"

	// File size limits
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file
	// Larger files are almost always generated output or binaries and are skipped.

	// Binary detection
	BinaryPreCheckBytes = 512 // Number of bytes inspected for NUL / magic number detection

	// Watch mode
	DefaultWatchDebounceMs = 300

	// Pattern cache sizes
	DefaultPatternCacheSize = 64
	MaxCachedPatternLength  = 1000

	// Extracted text cache
	DefaultTextCacheEntries = 512
)

// Mode selects how a query string is interpreted.
type Mode uint8

const (
	ModeLiteral Mode = iota // exact substring
	ModePattern             // regular expression (RE2 syntax)
)

// String returns the mode name used in config files and MCP responses
func (m Mode) String() string {
	switch m {
	case ModePattern:
		return "pattern"
	default:
		return "literal"
	}
}

// ParseMode maps "literal"/"plain" and "pattern"/"regex" to a Mode
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "literal", "plain", "":
		return ModeLiteral, true
	case "pattern", "regex", "re":
		return ModePattern, true
	default:
		return ModeLiteral, false
	}
}

// ModeFromRegexFlag converts the boolean regex switch used by the CLI and MCP
func ModeFromRegexFlag(regex bool) Mode {
	if regex {
		return ModePattern
	}
	return ModeLiteral
}
