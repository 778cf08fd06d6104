package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lds/internal/output"
)

// SearchResponse is the payload of the search tool
type SearchResponse struct {
	output.Report
	Root     string   `json:"root"`
	Warnings []string `json:"warnings,omitempty"`
}

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools.
// Tool errors are reported inside the result with IsError set so the client
// model can see them and correct its call.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createErrorResponseWithHelp(operation, err, "")
}

// createErrorResponseWithHelp adds a usage hint to the error payload
func createErrorResponseWithHelp(operation string, err error, help string) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	if help != "" {
		errorData["help"] = help
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}
