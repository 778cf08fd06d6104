package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lds/internal/config"
	"github.com/standardbeagle/lds/internal/fsys"
	"github.com/standardbeagle/lds/internal/markup"
	"github.com/standardbeagle/lds/internal/metrics"
	"github.com/standardbeagle/lds/internal/output"
	"github.com/standardbeagle/lds/internal/search"
	"github.com/standardbeagle/lds/pkg/pathutil"
)

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "regex",
			Aliases: []string{"x"},
			Usage:   "Interpret the query as a regular expression (RE2 syntax)",
		},
		&cli.BoolFlag{
			Name:    "ignore-case",
			Aliases: []string{"i"},
			Usage:   "Case-insensitive matching",
		},
		&cli.IntFlag{
			Name:    "context",
			Aliases: []string{"C"},
			Usage:   "Bytes of context on each side of a match",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Marker inserted before each match",
		},
		&cli.StringFlag{
			Name:  "postfix",
			Usage: "Marker inserted after each match",
		},
		&cli.StringSliceFlag{
			Name:  "markup-ext",
			Usage: "Markup rule replacing the configured ones: ext, ext=tag1,tag2 or ext:markdown (repeatable)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json or toml",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "Highlight matches: auto, always or never",
			Value: string(output.ColorAuto),
		},
		&cli.BoolFlag{
			Name:  "relative",
			Usage: "Print paths relative to the searched directory",
		},
		&cli.BoolFlag{
			Name:    "parallel",
			Aliases: []string{"p"},
			Usage:   "Search files concurrently (same result order)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent file workers with --parallel (0 = CPU count)",
		},
		&cli.BoolFlag{
			Name:  "sort",
			Usage: "Sort results by path",
		},
		&cli.IntFlag{
			Name:    "max-per-file",
			Aliases: []string{"m"},
			Usage:   "Maximum matches reported per file (0 = unlimited)",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Search a single file instead of a directory",
		},
		&cli.BoolFlag{
			Name:  "stats",
			Usage: "Print traversal statistics",
		},
	}
}

// searchRun is one configured search: query, target and rendering
type searchRun struct {
	cfg    *config.Config
	query  string
	root   string
	file   string
	engine *search.Engine
	writer *output.Writer

	relative bool
	stats    bool
}

// applySearchFlags copies command flags over the loaded configuration
func applySearchFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("regex") {
		cfg.Search.Regex = c.Bool("regex")
	}
	if c.IsSet("ignore-case") {
		cfg.Search.IgnoreCase = c.Bool("ignore-case")
	}
	if c.IsSet("context") {
		if c.Int("context") < 0 {
			return fmt.Errorf("--context must not be negative")
		}
		cfg.Search.Context = c.Int("context")
	}
	if c.IsSet("prefix") {
		cfg.Search.Prefix = c.String("prefix")
	}
	if c.IsSet("postfix") {
		cfg.Search.Postfix = c.String("postfix")
	}
	if c.IsSet("format") {
		cfg.Search.Format = c.String("format")
	}
	if c.IsSet("max-per-file") {
		if c.Int("max-per-file") < 0 {
			return fmt.Errorf("--max-per-file must not be negative")
		}
		cfg.Search.MaxPerFile = c.Int("max-per-file")
	}
	if c.IsSet("parallel") {
		cfg.Walk.Parallel = c.Bool("parallel")
	}
	if c.IsSet("workers") {
		if c.Int("workers") < 0 {
			return fmt.Errorf("--workers must not be negative")
		}
		cfg.Walk.Workers = c.Int("workers")
	}
	if c.IsSet("sort") {
		cfg.Walk.Sort = c.Bool("sort")
	}

	if specs := c.StringSlice("markup-ext"); len(specs) > 0 {
		rules := markup.Rules{}
		for _, spec := range specs {
			ext, rule, err := markup.ParseRule(spec)
			if err != nil {
				return err
			}
			rules[ext] = rule
		}
		cfg.Markup = rules
	}
	return nil
}

// newSearchRun loads configuration and flags into a runnable search
func newSearchRun(c *cli.Context) (*searchRun, error) {
	if c.NArg() < 1 {
		return nil, errors.New("usage: lds " + c.Command.Name + " <query> [dir]")
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	if err := applySearchFlags(c, cfg); err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Search.Format)
	if err != nil {
		return nil, err
	}
	colorMode, err := output.ParseColorMode(c.String("color"))
	if err != nil {
		return nil, err
	}

	root := cfg.Project.Root
	if c.NArg() > 1 {
		root = c.Args().Get(1)
		// the searched directory's .gitignore applies, not the working directory's
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		cfg.Project.Root = abs
	}

	return &searchRun{
		cfg:    cfg,
		query:  c.Args().First(),
		root:   root,
		file:   c.String("file"),
		engine: search.NewEngine(fsys.OS()),
		writer: output.NewWriter(c.App.Writer, output.Options{
			Format:  format,
			Color:   output.UseColor(colorMode, c.App.Writer),
			Prefix:  cfg.Search.Prefix,
			Postfix: cfg.Search.Postfix,
		}),
		relative: c.Bool("relative"),
		stats:    c.Bool("stats"),
	}, nil
}

// execute runs the search and writes the report. It returns the number of
// matches.
func (r *searchRun) execute(ctx context.Context) (int, error) {
	opts := r.cfg.SearchOptions()

	var (
		results []search.FileResult
		stats   metrics.SearchStats
		err     error
	)
	if r.file != "" {
		var q search.Query
		q, err = r.engine.Compile(r.query, r.cfg.Mode(), opts.CaseInsensitive)
		if err != nil {
			return 0, err
		}
		results, err = r.engine.SearchFile(ctx, r.file, q, opts)
	} else {
		results, stats, err = r.engine.SearchWithStats(ctx, r.root, r.query, r.cfg.Mode(), opts)
	}
	if err != nil {
		return 0, err
	}

	if r.relative {
		results = pathutil.ToRelativeResults(results, r.root)
	}

	var statsPtr *metrics.SearchStats
	if r.stats && r.file == "" {
		statsPtr = &stats
	}
	report := output.NewReport(results, statsPtr)
	if err := r.writer.Write(report); err != nil {
		return 0, err
	}
	return report.TotalMatches, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func searchCommand(c *cli.Context) error {
	run, err := newSearchRun(c)
	if err != nil {
		return fatal(err)
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	matches, err := run.execute(ctx)
	if err != nil {
		return fatal(err)
	}
	if matches == 0 {
		return cli.Exit("", exitNoMatches)
	}
	return nil
}
