package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lds/internal/debug"
	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/markup"
	"github.com/standardbeagle/lds/internal/metrics"
	"github.com/standardbeagle/lds/internal/output"
	"github.com/standardbeagle/lds/internal/search"
	"github.com/standardbeagle/lds/internal/types"
	"github.com/standardbeagle/lds/internal/version"
	"github.com/standardbeagle/lds/pkg/pathutil"
)

const searchUsage = `{"pattern": "hello", "path": "docs", "context": 30}`

// handleSearch runs one search. Query errors and unreadable roots are tool
// errors; unreadable files below the root are skipped.
func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic("search", func() (*mcp.CallToolResult, error) {
		var params SearchParams
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponseWithHelp("search", fmt.Errorf("invalid parameters: %w", err), searchUsage)
		}
		if params.Pattern == "" {
			return createErrorResponseWithHelp("search", errors.New("pattern is required"), searchUsage)
		}

		opts, err := s.searchOptions(params)
		if err != nil {
			return createErrorResponseWithHelp("search", err, searchUsage)
		}

		mode := types.ModeFromRegexFlag(params.Regex)
		debug.LogMCP("search %q mode=%s path=%q file=%q\n", params.Pattern, mode, params.Path, params.File)

		var (
			results []search.FileResult
			stats   metrics.SearchStats
			root    string
		)
		if params.File != "" {
			root = s.resolve(filepath.Dir(params.File))
			q, err := s.engine.Compile(params.Pattern, mode, params.IgnoreCase)
			if err != nil {
				return createErrorResponse("search", err)
			}
			results, err = s.engine.SearchFile(ctx, s.resolve(params.File), q, opts)
			if err != nil {
				return createErrorResponse("search", err)
			}
			stats.FilesVisited = 1
			stats.TotalMatches = int64(search.TotalMatches(results))
			stats.FilesMatched = int64(len(results))
		} else {
			root = s.resolve(params.Path)
			results, stats, err = s.engine.SearchWithStats(ctx, root, params.Pattern, mode, opts)
			if err != nil {
				if errors.Is(err, lderrors.ErrInvalidQuery) {
					s.diagnosticLogger.Printf("invalid query %q: %v", params.Pattern, err)
				}
				return createErrorResponse("search", err)
			}
		}

		if params.Relative {
			results = pathutil.ToRelativeResults(results, root)
		}

		response := SearchResponse{
			Report: output.NewReport(results, &stats),
			Root:   root,
		}
		for _, w := range params.Warnings {
			response.Warnings = append(response.Warnings, w.String())
		}

		s.diagnosticLogger.Printf("search %q: %d files, %d matches", params.Pattern, response.TotalFiles, response.TotalMatches)
		return createJSONResponse(response)
	})
}

// searchOptions starts from the configured options and applies the call's
// overrides
func (s *Server) searchOptions(params SearchParams) (search.Options, error) {
	opts := s.cfg.SearchOptions()
	opts.CaseInsensitive = params.IgnoreCase

	if params.Context != nil {
		if *params.Context < 0 {
			return opts, fmt.Errorf("context must not be negative, got %d", *params.Context)
		}
		opts.ContextWindow = *params.Context
	}
	if params.Prefix != nil {
		opts.Prefix = *params.Prefix
	}
	if params.Postfix != nil {
		opts.Postfix = *params.Postfix
	}
	if params.MaxPerFile < 0 {
		return opts, fmt.Errorf("max_per_file must not be negative, got %d", params.MaxPerFile)
	}
	if params.MaxPerFile > 0 {
		opts.MaxMatchesPerFile = params.MaxPerFile
	}

	if len(params.MarkupExtensions) > 0 {
		rules := markup.Rules{}
		for _, spec := range params.MarkupExtensions {
			ext, rule, err := markup.ParseRule(spec)
			if err != nil {
				return opts, err
			}
			rules[ext] = rule
		}
		opts.Markup = rules
	}

	if len(params.Include) > 0 {
		opts.Include = params.Include
	}
	opts.Exclude = append(opts.Exclude, params.Exclude...)
	return opts, nil
}

// resolve anchors relative paths at the project root
func (s *Server) resolve(p string) string {
	root := s.cfg.Project.Root
	if p == "" || p == "." {
		return root
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// handleInfo provides help and version information for the tools
func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var toolParam InfoParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &toolParam); err != nil {
			return createErrorResponseWithHelp("info", fmt.Errorf("invalid parameters: %w", err), `{"tool": "search"}`)
		}
	}

	tool := strings.ToLower(strings.TrimSpace(toolParam.Tool))
	switch tool {
	case "":
		return createJSONResponse(map[string]interface{}{
			"name":        "lds",
			"description": "Lightning Document Search: full-text search over directory trees with markup stripping",
			"tools": map[string]string{
				"search": "Find a literal or regex pattern in every document below a directory",
				"info":   "This help. Use {\"tool\": \"search\"} or {\"tool\": \"version\"}",
			},
			"root": s.cfg.Project.Root,
		})

	case "version":
		return createJSONResponse(map[string]interface{}{
			"server_name":    "lds-mcp-server",
			"server_version": version.FullInfo(),
			"build_id":       version.BuildID(),
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
			"diagnostic_log": s.diagnosticLogger.GetLogPath(),
		})

	case "search":
		return createJSONResponse(map[string]interface{}{
			"name":    "search",
			"example": searchUsage,
			"parameters": map[string]string{
				"pattern":           "required; literal text, or RE2 regex when regex=true",
				"path":              "directory below the project root (default: root)",
				"file":              "search one file instead of a directory",
				"regex":             "bool, default false",
				"ignore_case":       "bool, regex mode only",
				"context":           fmt.Sprintf("bytes each side of a match, default %d", s.cfg.Search.Context),
				"prefix":            fmt.Sprintf("default %q", s.cfg.Search.Prefix),
				"postfix":           fmt.Sprintf("default %q", s.cfg.Search.Postfix),
				"markup_extensions": "list like [\"html\", \"xrtm=head,script\", \"md:markdown\"]",
				"include":           "list of doublestar globs",
				"exclude":           "list of doublestar globs",
				"max_per_file":      "0 = unlimited",
				"relative":          "bool, report paths relative to the searched directory",
			},
			"markup_extensions": s.cfg.Markup.Extensions(),
		})

	default:
		known := map[string]struct{}{"search": {}, "version": {}, "info": {}}
		err := fmt.Errorf("unknown tool '%s'", tool)
		if suggestion := closestField(tool, known); suggestion != "" {
			err = fmt.Errorf("unknown tool '%s' (did you mean '%s'?)", tool, suggestion)
		}
		return createErrorResponse("info", err)
	}
}
