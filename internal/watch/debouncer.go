package watch

import (
	"sort"
	"time"
)

// debouncer collects changed paths until no new change arrives for the quiet
// period. It is owned by the event loop goroutine and is not safe for
// concurrent use.
type debouncer struct {
	pending map[string]struct{}
	quiet   time.Duration
	timer   *time.Timer
	armed   bool
}

func newDebouncer(quiet time.Duration) *debouncer {
	return &debouncer{
		pending: make(map[string]struct{}),
		quiet:   quiet,
	}
}

// add records a path and restarts the quiet period
func (d *debouncer) add(path string) {
	d.pending[path] = struct{}{}
	if d.timer == nil {
		d.timer = time.NewTimer(d.quiet)
	} else {
		d.timer.Reset(d.quiet)
	}
	d.armed = true
}

// ready fires once the quiet period has elapsed. It is nil while nothing is
// pending, which blocks forever in a select.
func (d *debouncer) ready() <-chan time.Time {
	if !d.armed {
		return nil
	}
	return d.timer.C
}

// drain returns the pending paths in sorted order and resets the batch
func (d *debouncer) drain() []string {
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	d.pending = make(map[string]struct{})
	d.armed = false
	return paths
}

// stop releases the timer
func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
}
