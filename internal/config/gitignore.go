package config

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// GitignoreParser turns .gitignore lines into doublestar exclusion patterns
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool // trailing slash: matches directories only
	Anchored  bool // leading slash or inner slash: relative to the root
}

// NewGitignoreParser creates an empty parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore reads rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	content, err := os.ReadFile(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern parses one .gitignore line; blanks and comments are ignored
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	var p GitignorePattern
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		p.Anchored = true
	}
	if line == "" {
		return
	}
	p.Pattern = line
	gp.patterns = append(gp.patterns, p)
}

// Patterns returns the parsed lines
func (gp *GitignoreParser) Patterns() []GitignorePattern {
	return gp.patterns
}

// ExclusionPatterns converts the parsed lines into doublestar globs relative to
// the root. Negations cannot be expressed as exclusions and are skipped.
func (gp *GitignoreParser) ExclusionPatterns() []string {
	var exclusions []string
	for _, p := range gp.patterns {
		if p.Negate {
			continue
		}
		exclusions = append(exclusions, convertPattern(p)...)
	}
	return exclusions
}

func convertPattern(p GitignorePattern) []string {
	base := p.Pattern
	if !p.Anchored && !strings.HasPrefix(base, "**/") {
		base = "**/" + base
	}
	if p.Directory {
		return []string{base + "/**"}
	}
	// Without a trailing slash the name may be a file or a directory
	return []string{base, base + "/**"}
}
