package mcp

// In-process testing: CallTool invokes tool handlers directly, bypassing the
// stdio transport.
//
//	server, _ := mcp.NewServer(cfg)
//	resultJSON, err := server.CallTool("search", map[string]interface{}{
//	    "pattern": "hello",
//	})

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool is a test helper method to simulate MCP tool calls. Error results
// are returned as Go errors carrying the error message.
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	ctx := context.Background()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	var result *mcp.CallToolResult
	switch toolName {
	case "search":
		result, err = s.handleSearch(ctx, req)
	case "info":
		result, err = s.handleInfo(ctx, req)
	default:
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Content) == 0 {
		return "", nil
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("unexpected content type %T", result.Content[0])
	}
	if result.IsError {
		var response map[string]interface{}
		if json.Unmarshal([]byte(textContent.Text), &response) == nil {
			if msg, ok := response["error"].(string); ok {
				return "", fmt.Errorf("MCP error: %s", msg)
			}
		}
		return "", fmt.Errorf("MCP error: %s", textContent.Text)
	}
	return textContent.Text, nil
}
