// Package mount waits for platform-mounted resources to appear on the local
// filesystem.
package mount

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/glorpus-work/kagglehub/pkg/errors"
)

// Defaults used by the mount backends.
const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 10 * time.Minute
)

// WaitOptions controls how long and how often WaitForPath checks.
type WaitOptions struct {
	// Interval between existence checks. Zero means DefaultInterval.
	Interval time.Duration
	// Timeout bounds the whole wait. Zero waits until ctx is done.
	Timeout time.Duration
}

// WaitForPath blocks until path exists. Filesystem events on the closest
// existing ancestor of path trigger an early check; the interval poll covers
// mounts that do not emit events.
//
// It returns ErrMountTimeout once opts.Timeout elapses and ctx.Err() when ctx
// is done first.
func WaitForPath(ctx context.Context, path string, opts WaitOptions) error {
	if exists(path) {
		return nil
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w := newWatcher(path)
	defer w.close()

	logger.Info("Waiting for mount", logger.Fields{"path": path, "timeout": opts.Timeout.String()})
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return errors.Wrapf(errors.ErrMountTimeout, "%s did not appear within %s", path, opts.Timeout)
		case <-ticker.C:
		case <-w.events():
			w.rewatch()
		case err := <-w.errors():
			logger.Debug("Filesystem watch error", logger.Fields{"path": path, "error": err.Error()})
		}
		if exists(path) {
			logger.Debug("Mount ready", logger.Fields{"path": path, "waited": time.Since(start).String()})
			return nil
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// watcher follows the closest existing ancestor of a target path. A nil
// fsnotify watcher degrades to pure polling.
type watcher struct {
	target  string
	fs      *fsnotify.Watcher
	watched string
}

func newWatcher(target string) *watcher {
	w := &watcher{target: target}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug("Filesystem events unavailable, polling only", logger.Fields{"error": err.Error()})
		return w
	}
	w.fs = fw
	w.rewatch()
	return w
}

// events is nil without a watcher, so the select case never fires.
func (w *watcher) events() <-chan fsnotify.Event {
	if w.fs == nil {
		return nil
	}
	return w.fs.Events
}

func (w *watcher) errors() <-chan error {
	if w.fs == nil {
		return nil
	}
	return w.fs.Errors
}

func (w *watcher) rewatch() {
	if w.fs == nil {
		return
	}
	dir := closestExisting(filepath.Dir(filepath.Clean(w.target)))
	if dir == w.watched {
		return
	}
	if w.watched != "" {
		_ = w.fs.Remove(w.watched)
	}
	if err := w.fs.Add(dir); err != nil {
		w.watched = ""
		return
	}
	w.watched = dir
}

func (w *watcher) close() {
	if w.fs != nil {
		_ = w.fs.Close()
	}
}

func closestExisting(dir string) string {
	for !exists(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir
}
