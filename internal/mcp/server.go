// Package mcp exposes the document search engine as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lds/internal/config"
	lddebug "github.com/standardbeagle/lds/internal/debug"
	"github.com/standardbeagle/lds/internal/fsys"
	"github.com/standardbeagle/lds/internal/search"
	"github.com/standardbeagle/lds/internal/version"
)

// Server wires the search engine to an MCP server
type Server struct {
	server           *mcp.Server
	engine           *search.Engine
	cfg              *config.Config
	diagnosticLogger *DiagnosticLogger
}

// SearchParams are the arguments of the search tool
type SearchParams struct {
	Pattern          string   `json:"pattern"`
	Path             string   `json:"path,omitempty"`
	File             string   `json:"file,omitempty"`
	Regex            bool     `json:"regex,omitempty"`
	IgnoreCase       bool     `json:"ignore_case,omitempty"`
	Context          *int     `json:"context,omitempty"`
	Prefix           *string  `json:"prefix,omitempty"`
	Postfix          *string  `json:"postfix,omitempty"`
	MarkupExtensions []string `json:"markup_extensions,omitempty"`
	Include          []string `json:"include,omitempty"`
	Exclude          []string `json:"exclude,omitempty"`
	MaxPerFile       int      `json:"max_per_file,omitempty"`
	Relative         bool     `json:"relative,omitempty"`

	Warnings []UnknownField `json:"-"` // Captures unknown fields
}

// searchAliases maps alternative names clients commonly send to the canonical
// field
var searchAliases = map[string]string{
	"query":            "pattern",
	"use_regex":        "regex",
	"case_insensitive": "ignore_case",
	"context_window":   "context",
	"extensions":       "markup_extensions",
}

// UnmarshalJSON accepts unknown fields and aliases. Unknown fields are kept as
// warnings instead of failing the call.
func (s *SearchParams) UnmarshalJSON(data []byte) error {
	type Alias SearchParams // Type alias to avoid recursion

	knownFields := map[string]struct{}{
		"pattern": {}, "path": {}, "file": {}, "regex": {}, "ignore_case": {},
		"context": {}, "prefix": {}, "postfix": {}, "markup_extensions": {},
		"include": {}, "exclude": {}, "max_per_file": {}, "relative": {},
	}
	for alias := range searchAliases {
		knownFields[alias] = struct{}{}
	}

	raw, warnings, err := collectUnknownFields(data, knownFields)
	if err != nil {
		return err
	}

	normalizedData := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		if canonical, ok := searchAliases[key]; ok {
			if _, set := raw[canonical]; set {
				continue // the canonical name wins
			}
			key = canonical
		}
		normalizedData[key] = value
	}

	normalizedJSON, err := json.Marshal(normalizedData)
	if err != nil {
		return err
	}

	aux := (*Alias)(s)
	if err := json.Unmarshal(normalizedJSON, aux); err != nil {
		return err
	}
	s.Warnings = warnings
	return nil
}

// InfoParams are the arguments of the info tool
type InfoParams struct {
	Tool     string         `json:"tool,omitempty"`
	Warnings []UnknownField `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (i *InfoParams) UnmarshalJSON(data []byte) error {
	type Alias InfoParams

	_, warnings, err := collectUnknownFields(data, map[string]struct{}{"tool": {}})
	if err != nil {
		return err
	}

	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*i = InfoParams(alias)
	i.Warnings = warnings
	return nil
}

// NewServer creates an MCP server searching below cfg.Project.Root. Diagnostics
// go to a file in the temp directory.
func NewServer(cfg *config.Config) (*Server, error) {
	return NewServerWithLogger(cfg, NewDiagnosticLogger())
}

// NewServerWithLogger creates a server with a caller-provided diagnostic logger
func NewServerWithLogger(cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mcp server requires a configuration")
	}

	s := &Server{
		engine:           search.NewEngine(fsys.OS()),
		cfg:              cfg,
		diagnosticLogger: logger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "lds-mcp-server",
		Version: version.Info(),
	}, nil)
	s.registerTools()

	logger.Printf("MCP server initialized for root %s", cfg.Project.Root)
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Get help for the document search tools. Use {\"tool\": \"search\"} for parameters or {\"tool\": \"version\"} for server version info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to get information about (e.g., 'search', 'version')",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "search",
		Description: "Search the text of every document below a directory and return each match wrapped in prefix/postfix with surrounding context. HTML-like files are stripped of markup first.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"pattern": {
					Type:        "string",
					Description: "Literal text to find, or a regular expression when regex is true",
				},
				"path": {
					Type:        "string",
					Description: "Directory to search, relative to the project root (default: project root)",
				},
				"file": {
					Type:        "string",
					Description: "Search only this file instead of a directory",
				},
				"regex": {
					Type:        "boolean",
					Description: "Interpret pattern as an RE2 regular expression",
				},
				"ignore_case": {
					Type:        "boolean",
					Description: "Case-insensitive matching (regex mode)",
				},
				"context": {
					Type:        "integer",
					Description: "Bytes of context on each side of a match",
				},
				"prefix": {
					Type:        "string",
					Description: "Marker inserted before each match",
				},
				"postfix": {
					Type:        "string",
					Description: "Marker inserted after each match",
				},
				"markup_extensions": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Markup rules replacing the configured ones: \"ext\", \"ext=tag1,tag2\" or \"ext:markdown\"",
				},
				"include": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Glob patterns of files to search (doublestar syntax, relative to path)",
				},
				"exclude": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Glob patterns of files and directories to skip",
				},
				"max_per_file": {
					Type:        "integer",
					Description: "Maximum matches reported per file (0 = unlimited)",
				},
				"relative": {
					Type:        "boolean",
					Description: "Report paths relative to the searched directory",
				},
			},
			Required: []string{"pattern"},
		},
	}, s.handleSearch)
}

// recoverFromPanic turns a handler panic into an error result
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v\n%s", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()
	return handler()
}

// Start serves over stdio until ctx is done or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	lddebug.SetMCPMode(true)
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetHandlerForTesting returns a handler function for testing purposes
func (s *Server) GetHandlerForTesting(toolName string) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch toolName {
	case "search":
		return s.handleSearch
	case "info":
		return s.handleInfo
	default:
		return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
		}
	}
}

// Close releases resources held by the Server
func (s *Server) Close() error {
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	return s.diagnosticLogger.Close()
}
