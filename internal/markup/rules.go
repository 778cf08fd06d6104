package markup

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Kind selects the conversion applied before stripping
type Kind uint8

const (
	KindHTML     Kind = iota // strip directly
	KindMarkdown             // render with goldmark, then strip
)

// String returns the kind name used in config files
func (k Kind) String() string {
	if k == KindMarkdown {
		return "markdown"
	}
	return "html"
}

// Rule describes how one markup-like extension is turned into plain text
type Rule struct {
	Kind Kind
	Tags []string // blocks deleted before generic tag stripping, in order
}

// Rules maps a lowercase extension without the leading dot to its rule
type Rules map[string]Rule

// DefaultTags is the block list used when an extension is declared without tags
var DefaultTags = []string{"head", "script"}

// DefaultRules returns the built-in extension table
func DefaultRules() Rules {
	return Rules{
		"html":  {Kind: KindHTML, Tags: []string{"head", "script"}},
		"htm":   {Kind: KindHTML, Tags: []string{"head", "script"}},
		"xhtml": {Kind: KindHTML, Tags: []string{"head", "script"}},
		"xrtm":  {Kind: KindHTML, Tags: []string{"head", "script", "scalable_block"}},
	}
}

// Lookup classifies path by its extension. Files without an extension are
// never markup-like.
func (r Rules) Lookup(path string) (Rule, bool) {
	ext := NormalizeExt(filepath.Ext(path))
	if ext == "" || r == nil {
		return Rule{}, false
	}
	rule, ok := r[ext]
	return rule, ok
}

// Extensions returns the configured extensions in sorted order
func (r Rules) Extensions() []string {
	exts := make([]string, 0, len(r))
	for ext := range r {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Clone returns a deep copy
func (r Rules) Clone() Rules {
	out := make(Rules, len(r))
	for ext, rule := range r {
		out[ext] = Rule{Kind: rule.Kind, Tags: append([]string(nil), rule.Tags...)}
	}
	return out
}

// Merge overlays other on top of r and returns the result
func (r Rules) Merge(other Rules) Rules {
	out := r.Clone()
	for ext, rule := range other {
		out[ext] = Rule{Kind: rule.Kind, Tags: append([]string(nil), rule.Tags...)}
	}
	return out
}

// NormalizeExt lowercases an extension and drops the leading dot
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ParseRule parses a command line rule: "ext", "ext=tag1,tag2" or
// "ext:markdown" / "ext:markdown=tag1". An extension given without tags uses
// DefaultTags.
func ParseRule(raw string) (string, Rule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", Rule{}, fmt.Errorf("empty markup rule")
	}

	head, tagList, hasTags := strings.Cut(raw, "=")
	extPart, kindPart, hasKind := strings.Cut(head, ":")

	ext := NormalizeExt(extPart)
	if ext == "" {
		return "", Rule{}, fmt.Errorf("markup rule %q has no extension", raw)
	}

	rule := Rule{Kind: KindHTML}
	if hasKind {
		kind, err := ParseKind(kindPart)
		if err != nil {
			return "", Rule{}, fmt.Errorf("markup rule %q: %w", raw, err)
		}
		rule.Kind = kind
	}

	if hasTags {
		for _, tag := range strings.Split(tagList, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				rule.Tags = append(rule.Tags, tag)
			}
		}
	} else {
		rule.Tags = append([]string(nil), DefaultTags...)
	}

	return ext, rule, nil
}

// ParseKind parses "html" or "markdown"
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return KindHTML, nil
	case "markdown", "md":
		return KindMarkdown, nil
	default:
		return KindHTML, fmt.Errorf("unknown markup kind %q (expected html or markdown)", s)
	}
}

// Normalize converts raw file content into plain text according to rule.
func (rule Rule) Normalize(raw []byte) (string, error) {
	source := string(raw)
	if rule.Kind == KindMarkdown {
		rendered, err := RenderMarkdown(raw)
		if err != nil {
			return "", err
		}
		source = rendered
	}
	return Strip(source, rule.Tags), nil
}
