// Package watch re-runs an action whenever one of a set of files changes.
package watch

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/msageha/wfinterop/internal/report"
)

const DefaultDebounce = 250 * time.Millisecond

type Options struct {
	// Debounce collapses bursts of events (an atomic write is a create plus
	// a rename) into one run.
	Debounce time.Duration
	// Interval, when positive, also runs the action periodically.
	Interval time.Duration
}

// Watcher watches the parent directories of its files so that files
// replaced by rename are still seen.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	action   func(ctx context.Context) error
	opts     Options
	logger   *log.Logger
	logLevel report.LogLevel
}

func New(paths []string, action func(ctx context.Context) error, opts Options, logger *log.Logger, logLevel report.LogLevel) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		action:   action,
		opts:     opts,
		logger:   logger,
		logLevel: logLevel,
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Run performs the action once, then again after each change, until ctx is
// done. Action errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.log(report.LogLevelDebug, "watching dir=%s", dir)
	}

	w.runAction(ctx, "initial")

	var tickC <-chan time.Time
	if w.opts.Interval > 0 {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()
		tickC = ticker.C
	}

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log(report.LogLevelDebug, "fsnotify event=%s file=%s", event.Op, event.Name)
			if debounce == nil {
				debounce = time.NewTimer(w.opts.Debounce)
			} else {
				debounce.Reset(w.opts.Debounce)
			}
			debounceC = debounce.C
		case <-debounceC:
			debounceC = nil
			w.runAction(ctx, "change")
		case <-tickC:
			w.runAction(ctx, "interval")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log(report.LogLevelError, "fsnotify error=%v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return w.files[filepath.Clean(event.Name)]
}

func (w *Watcher) runAction(ctx context.Context, trigger string) {
	if err := w.action(ctx); err != nil {
		w.log(report.LogLevelError, "action failed trigger=%s error=%v", trigger, err)
		return
	}
	w.log(report.LogLevelDebug, "action done trigger=%s", trigger)
}

func (w *Watcher) log(level report.LogLevel, format string, args ...any) {
	report.Logf(w.logger, w.logLevel, level, "watch", format, args...)
}
