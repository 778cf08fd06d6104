package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/standardbeagle/lds/internal/markup"
	"github.com/standardbeagle/lds/internal/search"
	"github.com/standardbeagle/lds/internal/types"
)

// FileName is the project config file looked up in the root and home directories
const FileName = ".lds.kdl"

type Config struct {
	Version int
	Project Project
	Search  Search
	Markup  markup.Rules
	Walk    Walk
	Watch   Watch
	Include []string
	Exclude []string
}

type Project struct {
	Root string
}

type Search struct {
	Context    int    // bytes of context on each side of a match
	Prefix     string // inserted before each match
	Postfix    string // inserted after each match
	Regex      bool   // interpret queries as patterns
	IgnoreCase bool   // pattern mode only
	MaxPerFile int    // 0 = unlimited
	Format     string // text, json or toml
}

type Walk struct {
	MaxFileSize      int64
	SkipBinary       bool
	Parallel         bool
	Workers          int // 0 = GOMAXPROCS
	Sort             bool
	FollowSymlinks   bool
	RespectGitignore bool // add .gitignore patterns of the root to the exclusions
}

type Watch struct {
	DebounceMs int
}

// Default returns the built-in configuration rooted at the working directory
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return &Config{
		Version: 1,
		Project: Project{Root: cwd},
		Search: Search{
			Context: types.DefaultContextWindow,
			Prefix:  types.DefaultPrefix,
			Postfix: types.DefaultPostfix,
			Format:  "text",
		},
		Markup: markup.DefaultRules(),
		Walk: Walk{
			MaxFileSize:      types.DefaultMaxFileSize,
			SkipBinary:       true,
			RespectGitignore: true,
		},
		Watch: Watch{
			DebounceMs: types.DefaultWatchDebounceMs,
		},
		Include: []string{},
		Exclude: defaultExclusions(),
	}
}

// defaultExclusions skips VCS metadata and dependency trees, which never hold
// the user's documents
func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.hg/**",
		"**/.svn/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/__pycache__/**",
	}
}

// Load reads the configuration for the current directory. A non-empty path
// names an explicit config file that replaces the project lookup.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot layers the global ~/.lds.kdl under the project config found in
// rootDir (or the explicit file at path). Exclusions of both layers are kept.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if absHome, _ := filepath.Abs(homeDir); absHome != mustAbs(searchDir) {
			if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
				baseConfig = globalCfg
			}
		}
	}

	var (
		projectConfig *Config
		err           error
	)
	if path != "" {
		projectConfig, err = LoadFile(path)
	} else {
		projectConfig, err = LoadKDL(searchDir)
	}
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		cfg = baseConfig
	default:
		cfg = Default()
	}

	if projectConfig == nil || path != "" {
		cfg.Project.Root = mustAbs(searchDir)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = dedupe(append(slices.Clone(base.Exclude), project.Exclude...))
	}

	// Inclusions: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = slices.Clone(base.Include)
	}

	// Markup rules declared only globally still apply
	merged.Markup = base.Markup.Merge(project.Markup)

	return &merged
}

// SearchOptions converts the configuration into engine options. Gitignore
// patterns of the project root are appended to the exclusions when enabled.
func (c *Config) SearchOptions() search.Options {
	exclude := slices.Clone(c.Exclude)
	if c.Walk.RespectGitignore && c.Project.Root != "" {
		parser := NewGitignoreParser()
		if err := parser.LoadGitignore(c.Project.Root); err == nil {
			exclude = dedupe(append(exclude, parser.ExclusionPatterns()...))
		}
	}

	return search.Options{
		ContextWindow:     c.Search.Context,
		Prefix:            c.Search.Prefix,
		Postfix:           c.Search.Postfix,
		Markup:            c.Markup.Clone(),
		Include:           slices.Clone(c.Include),
		Exclude:           exclude,
		MaxFileSize:       c.Walk.MaxFileSize,
		SkipBinary:        c.Walk.SkipBinary,
		FollowSymlinks:    c.Walk.FollowSymlinks,
		Parallel:          c.Walk.Parallel,
		Workers:           c.Walk.Workers,
		SortByPath:        c.Walk.Sort,
		CaseInsensitive:   c.Search.IgnoreCase,
		MaxMatchesPerFile: c.Search.MaxPerFile,
	}
}

// Mode returns the query mode selected by the search section
func (c *Config) Mode() types.Mode {
	return types.ModeFromRegexFlag(c.Search.Regex)
}

// String summarizes the config for verbose logging
func (c *Config) String() string {
	return fmt.Sprintf("root=%s context=%d regex=%v markup=%v include=%d exclude=%d",
		c.Project.Root, c.Search.Context, c.Search.Regex, c.Markup.Extensions(), len(c.Include), len(c.Exclude))
}

// dedupe removes repeated patterns keeping the first occurrence
func dedupe(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func mustAbs(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
