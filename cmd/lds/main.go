package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lds/internal/config"
	"github.com/standardbeagle/lds/internal/debug"
	"github.com/standardbeagle/lds/internal/version"
)

// Exit codes of the search and watch commands
const (
	exitNoMatches = 1
	exitFatal     = 2
)

// loadConfigWithOverrides loads configuration and applies the global CLI flag
// overrides. Without --config the project .lds.kdl in the root is used.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	configPath := ""
	if c.IsSet("config") {
		configPath = c.String("config")
	}

	rootDir := c.String("root")
	if rootDir != "" {
		info, err := os.Stat(rootDir)
		if err != nil {
			return nil, fmt.Errorf("invalid root %q: %w", rootDir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("invalid root %q: not a directory", rootDir)
		}
	}

	cfg, err := config.LoadWithRoot(configPath, rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootDir != "" {
		// Convert to absolute path to ensure consistent path handling
		absRoot, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootDir, err)
		}
		cfg.Project.Root = absRoot
	}

	debug.Log("CONFIG", "%s\n", cfg)
	return cfg, nil
}

// fatal wraps err so the app exits with the fatal status
func fatal(err error) error {
	return cli.Exit(err.Error(), exitFatal)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "lds",
		Usage:                  "Lightning fast full-text search over document trees",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   config.FileName,
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory to search (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include '**/*.md')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/drafts/**')",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Write debug output to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug.SetVerbose(true)
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search documents for a literal or pattern",
				ArgsUsage: "<query> [dir]",
				Flags:     searchFlags(),
				Action:    searchCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Search, then search again whenever documents change",
				ArgsUsage: "<query> [dir]",
				Flags:     searchFlags(),
				Action:    watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Show or create configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration as KDL",
						Action: configShowCommand,
					},
					{
						Name:  "init",
						Usage: "Write a default " + config.FileName + " in the root directory",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing file",
							},
						},
						Action: configInitCommand,
					},
				},
			},
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}
