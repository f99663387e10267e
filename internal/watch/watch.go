// Package watch reruns a script whenever its file is saved.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/undotree/internal/logging"
)

// ErrNotRegular indicates the watched path is not a regular file.
var ErrNotRegular = errors.New("watch: not a regular file")

// Watcher watches a single file.
//
// The parent directory is watched rather than the file itself so editors
// that save by renaming a temporary file are still noticed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *logging.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before a rerun.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l.WithComponent("watch")
		}
	}
}

// New starts watching path.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotRegular
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		path:     absPath,
		debounce: 100 * time.Millisecond,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn once and again after every change to the file, until ctx
// is done. Errors from fn are passed to onError and do not stop watching.
func (w *Watcher) Run(ctx context.Context, fn func() error, onError func(error)) error {
	if onError == nil {
		onError = func(error) {}
	}
	if err := fn(); err != nil {
		onError(err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("%s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if _, err := os.Stat(w.path); err != nil {
				// Removed, possibly mid-save. Wait for it to reappear.
				continue
			}
			if err := fn(); err != nil {
				onError(err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
