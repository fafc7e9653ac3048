package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// ErrClosed is returned when registering a path on a closed watcher.
var ErrClosed = errors.New("watcher is closed")

// NativeWatcher is a Watcher driven by fsnotify events.
//
// It watches the parent directory of each file so that editors which save
// by renaming a temp file over the original keep being observed. Every
// event for a watched file triggers a stat, and the result goes through the
// same Changed heuristic as polling.
type NativeWatcher struct {
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	fallback *Poller
	stat     statFunc

	mu      sync.Mutex
	entries map[string]*nativeEntry
	dirs    map[string]int
	closed  bool
	done    chan struct{}
}

type nativeEntry struct {
	onChange func(Change)
	last     Stat
}

// NewNativeWatcher starts an fsnotify watcher. When fallback is non-nil,
// paths whose directory cannot be watched natively are polled by it.
func NewNativeWatcher(logger *slog.Logger, fallback *Poller) (*NativeWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	w := &NativeWatcher{
		logger:   loggerOrDefault(logger),
		fsw:      fsw,
		fallback: fallback,
		stat:     StatFile,
		entries:  make(map[string]*nativeEntry),
		dirs:     make(map[string]int),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch implements Watcher. The interval is only used by the fallback poller.
func (w *NativeWatcher) Watch(path string, interval time.Duration, onChange func(Change)) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	if _, ok := w.entries[path]; !ok {
		if w.dirs[dir] == 0 {
			if err := w.fsw.Add(dir); err != nil {
				if w.fallback == nil {
					return errors.Wrapf(err, "watching directory %s", dir)
				}
				w.logger.Debug("directory not watchable, polling file", "path", path, "error", err)
				return w.fallback.Watch(path, interval, onChange)
			}
		}
		w.dirs[dir]++
	}
	w.entries[path] = &nativeEntry{onChange: onChange, last: w.stat(path)}

	w.logger.Debug("watching file", "path", path, "backend", "native")
	return nil
}

// Unwatch implements Watcher.
func (w *NativeWatcher) Unwatch(path string) {
	path = filepath.Clean(path)
	if w.fallback != nil {
		w.fallback.Unwatch(path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[path]; !ok {
		return
	}
	delete(w.entries, path)

	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if err := w.fsw.Remove(dir); err != nil {
			w.logger.Debug("removing directory watch", "dir", dir, "error", err)
		}
	}
	w.logger.Debug("stopped watching file", "path", path)
}

// Close implements Watcher.
func (w *NativeWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.entries = make(map[string]*nativeEntry)
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	if w.fallback != nil {
		_ = w.fallback.Close()
	}
	return errors.Wrap(err, "closing fsnotify watcher")
}

func (w *NativeWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(filepath.Clean(event.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "error", err)
		}
	}
}

func (w *NativeWatcher) handle(path string) {
	w.mu.Lock()
	e, ok := w.entries[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	curr := w.stat(path)
	prev := e.last
	e.last = curr
	w.mu.Unlock()

	if Changed(prev, curr) {
		e.onChange(Change{Path: path, Prev: prev, Curr: curr})
	}
}
