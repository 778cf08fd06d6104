package main

import (
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lds/internal/debug"
	"github.com/standardbeagle/lds/internal/mcp"
)

func mcpCommand(c *cli.Context) error {
	// Enable MCP mode to suppress all debug output on stdio
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}
	defer server.Close()

	ctx, cancel := signalContext(c)
	defer cancel()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	return nil
}
