package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lds/internal/debug"
	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/search"
	"github.com/standardbeagle/lds/internal/watch"
)

func watchCommand(c *cli.Context) error {
	run, err := newSearchRun(c)
	if err != nil {
		return fatal(err)
	}
	if run.file != "" {
		return fatal(errors.New("watch searches a directory; --file is not supported"))
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	// An invalid query fails before anything is watched
	if _, err := run.execute(ctx); err != nil {
		return fatal(err)
	}

	opts := run.cfg.SearchOptions()
	watcher, err := watch.New(watch.Options{
		Root:     run.root,
		Debounce: time.Duration(run.cfg.Watch.DebounceMs) * time.Millisecond,
		Filter:   search.NewPathFilter(opts.Include, opts.Exclude),
	})
	if err != nil {
		return fatal(err)
	}

	fmt.Fprintf(c.App.ErrWriter, "watching %s (Ctrl+C to stop)\n", run.root)
	err = watcher.Run(ctx, func(ctx context.Context, paths []string) {
		debug.LogWatch("%d changed paths: %v\n", len(paths), paths)
		fmt.Fprintf(c.App.ErrWriter, "--- %d change(s), searching again\n", len(paths))
		if _, err := run.execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
			if errors.Is(err, lderrors.ErrSubtreeUnreadable) {
				log.Printf("Warning: search root became unreadable: %v", err)
				return
			}
			log.Printf("Warning: search failed: %v", err)
		}
	})
	if err != nil {
		return fatal(err)
	}

	stats := watcher.Stats()
	debug.LogWatch("watch finished: %d events in %d batches\n", stats.EventsProcessed, stats.Batches)
	return nil
}
