// Package watch reports batches of file changes below a set of directories.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/qtpi-bonding/folio/internal/walker"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Roots are watched recursively. Missing roots are skipped.
	Roots []string
	// Ignore lists directories whose changes are never reported, such as
	// the build output.
	Ignore   []string
	Debounce time.Duration
}

// Watcher watches directory trees and reports debounced batches of
// changed paths.
type Watcher struct {
	opts    Options
	ignore  []string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
}

// New creates a Watcher with every existing root already registered, so
// changes made after New returns are observed.
func New(opts Options, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{opts: opts, logger: logger, watcher: fw}
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}

	for _, root := range opts.Roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			logger.Debug("watch root missing", zap.String("dir", root))
			continue
		}
		if err := w.addTree(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree registers dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	dirs, err := walker.Dirs(dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if w.ignored(d) {
			continue
		}
		if err := w.watcher.Add(d); err != nil {
			return fmt.Errorf("watching %s: %w", d, err)
		}
	}
	return nil
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if walker.IsIgnoredName(part) {
			return true
		}
	}
	return walker.IsScratch(path)
}

// Run delivers changes to onChange until ctx is cancelled. Each call
// receives the sorted, de-duplicated paths changed since the previous call.
// onChange runs on the watcher goroutine; events arriving meanwhile are
// batched into the next call.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	defer w.watcher.Close()

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Stop()
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = map[string]struct{}{}
			w.logger.Debug("changes settled", zap.Int("paths", len(paths)))
			onChange(paths)
		}
	}
}

// handle reports whether event counts as a change. New directories are
// added to the watch list.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod || w.ignored(event.Name) {
		return false
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watching new directory", zap.String("dir", event.Name), zap.Error(err))
			}
		}
	}
	return true
}
