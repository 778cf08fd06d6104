package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/lds/internal/markup"
)

// LoadKDL loads dir/.lds.kdl. A missing file is not an error: it returns nil.
func LoadKDL(dir string) (*Config, error) {
	kdlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	cfg, err := LoadFile(kdlPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a KDL config file. A relative project root is resolved
// against the directory containing the file.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	configDir := filepath.Dir(path)
	if cfg.Project.Root == "" {
		cfg.Project.Root = mustAbs(configDir)
	} else if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(mustAbs(configDir), cfg.Project.Root))
	}
	return cfg, nil
}

// parseKDL starts from the defaults and applies every recognised node.
// Unknown nodes are ignored so newer config files still load.
func parseKDL(content string) (*Config, error) {
	cfg := Default()
	cfg.Project.Root = ""

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children { // project { root "." }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "search":
			parseSearchSection(cfg, n)
		case "markup":
			if err := parseMarkupSection(cfg, n); err != nil {
				return nil, err
			}
		case "walk":
			parseWalkSection(cfg, n)
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// An exclude node replaces the default exclusions
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func parseSearchSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "context":
			if v, ok := firstIntArg(cn); ok {
				cfg.Search.Context = v
			}
		case "prefix":
			if s, ok := firstStringArg(cn); ok {
				cfg.Search.Prefix = s
			}
		case "postfix":
			if s, ok := firstStringArg(cn); ok {
				cfg.Search.Postfix = s
			}
		case "regex":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Search.Regex = b
			}
		case "ignore_case":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Search.IgnoreCase = b
			}
		case "max_per_file":
			if v, ok := firstIntArg(cn); ok {
				cfg.Search.MaxPerFile = v
			}
		case "format":
			if s, ok := firstStringArg(cn); ok {
				cfg.Search.Format = s
			}
		default:
			log.Printf("WARNING: unknown search option '%s' in KDL config", nodeName(cn))
		}
	}
}

// parseMarkupSection reads
//
//	markup {
//	    reset
//	    ext "html" "head" "script"
//	    markdown "md"
//	    disable "htm"
//	}
//
// Rules overlay the defaults unless reset comes first.
func parseMarkupSection(cfg *Config, n *document.Node) error {
	for _, cn := range n.Children {
		name := nodeName(cn)
		args := collectStringArgs(cn)
		switch name {
		case "reset":
			cfg.Markup = markup.Rules{}
		case "ext", "markdown":
			if len(args) == 0 {
				return fmt.Errorf("markup %s needs an extension", name)
			}
			rule := markup.Rule{Kind: markup.KindHTML, Tags: args[1:]}
			if name == "markdown" {
				rule.Kind = markup.KindMarkdown
			}
			if len(rule.Tags) == 0 {
				rule.Tags = append([]string(nil), markup.DefaultTags...)
			}
			cfg.Markup[markup.NormalizeExt(args[0])] = rule
		case "disable":
			for _, ext := range args {
				delete(cfg.Markup, markup.NormalizeExt(ext))
			}
		default:
			return fmt.Errorf("unknown markup node %q", name)
		}
	}
	return nil
}

func parseWalkSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Walk.MaxFileSize = int64(v)
			}
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Walk.MaxFileSize = sz
				} else {
					log.Printf("WARNING: invalid max_file_size %q in KDL config: %v", s, err)
				}
			}
		case "skip_binary":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Walk.SkipBinary = b
			}
		case "parallel":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Walk.Parallel = b
			}
		case "workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Walk.Workers = v
			}
		case "sort":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Walk.Sort = b
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Walk.FollowSymlinks = b
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Walk.RespectGitignore = b
			}
		}
	}
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block format: exclude { "pattern" } has the strings as child node names
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}

// WriteKDL renders cfg in the format parseKDL reads. The project root is
// omitted so the file stays portable.
func (c *Config) WriteKDL(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "version %d\n\n", c.Version)

	b.WriteString("search {\n")
	fmt.Fprintf(&b, "    context %d\n", c.Search.Context)
	fmt.Fprintf(&b, "    prefix %s\n", kdlQuote(c.Search.Prefix))
	fmt.Fprintf(&b, "    postfix %s\n", kdlQuote(c.Search.Postfix))
	fmt.Fprintf(&b, "    regex %t\n", c.Search.Regex)
	fmt.Fprintf(&b, "    ignore_case %t\n", c.Search.IgnoreCase)
	fmt.Fprintf(&b, "    max_per_file %d\n", c.Search.MaxPerFile)
	fmt.Fprintf(&b, "    format %s\n", kdlQuote(c.Search.Format))
	b.WriteString("}\n\n")

	b.WriteString("markup {\n    reset\n")
	for _, ext := range c.Markup.Extensions() {
		rule := c.Markup[ext]
		node := "ext"
		if rule.Kind == markup.KindMarkdown {
			node = "markdown"
		}
		fmt.Fprintf(&b, "    %s %s", node, kdlQuote(ext))
		for _, tag := range rule.Tags {
			fmt.Fprintf(&b, " %s", kdlQuote(tag))
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("walk {\n")
	fmt.Fprintf(&b, "    max_file_size %d\n", c.Walk.MaxFileSize)
	fmt.Fprintf(&b, "    skip_binary %t\n", c.Walk.SkipBinary)
	fmt.Fprintf(&b, "    parallel %t\n", c.Walk.Parallel)
	fmt.Fprintf(&b, "    workers %d\n", c.Walk.Workers)
	fmt.Fprintf(&b, "    sort %t\n", c.Walk.Sort)
	fmt.Fprintf(&b, "    follow_symlinks %t\n", c.Walk.FollowSymlinks)
	fmt.Fprintf(&b, "    respect_gitignore %t\n", c.Walk.RespectGitignore)
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "watch {\n    debounce_ms %d\n}\n", c.Watch.DebounceMs)

	if len(c.Include) > 0 {
		b.WriteString("\ninclude")
		for _, p := range c.Include {
			fmt.Fprintf(&b, " %s", kdlQuote(p))
		}
		b.WriteString("\n")
	}
	// Always written: an empty exclude node clears the default exclusions
	b.WriteString("\nexclude")
	for _, p := range c.Exclude {
		fmt.Fprintf(&b, " %s", kdlQuote(p))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// kdlQuote produces a KDL string literal
func kdlQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
