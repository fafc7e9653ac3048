// Package watch notifies callers when a file changes on disk.
//
// Two backends share one change heuristic (see [Changed]): a [Poller] that
// stats the file on a fixed interval, and a [NativeWatcher] built on
// fsnotify that stats the file whenever its directory reports an event.
package watch

import (
	"log/slog"
	"os"
	"time"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// DefaultInterval is the polling interval used when none is given.
const DefaultInterval = time.Second

// Backend selects a Watcher implementation.
type Backend string

const (
	// BackendPoll stats files on a fixed interval.
	BackendPoll Backend = "poll"
	// BackendNative uses file system events.
	BackendNative Backend = "native"
	// BackendAuto uses file system events and falls back to polling.
	BackendAuto Backend = "auto"
)

// Valid reports whether b names a known backend. The empty string is valid
// and means poll.
func (b Backend) Valid() bool {
	switch b {
	case "", BackendPoll, BackendNative, BackendAuto:
		return true
	}
	return false
}

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown watch backend")

// Stat is the subset of file metadata the change heuristic looks at.
type Stat struct {
	Exists  bool
	ModTime time.Time
	Size    int64
}

// StatFile stats path. A missing or unreadable file yields the zero Stat,
// which is how a removed file is recognized.
func StatFile(path string) Stat {
	info, err := os.Stat(path)
	if err != nil {
		return Stat{}
	}
	return Stat{Exists: true, ModTime: info.ModTime(), Size: info.Size()}
}

// Equal reports whether two stats describe the same file state.
func (s Stat) Equal(o Stat) bool {
	return s.Exists == o.Exists && s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Changed reports whether curr differs from prev in a way that warrants a
// reload: the modification time moved, the file disappeared, or the size
// dropped to zero from a non-zero value (truncation).
func Changed(prev, curr Stat) bool {
	if prev.Equal(curr) {
		return false
	}
	switch {
	case !curr.ModTime.Equal(prev.ModTime):
		return true
	case prev.Exists && !curr.Exists:
		return true
	case curr.Size == 0 && prev.Size > 0:
		return true
	}
	return false
}

// Change describes one detected modification.
type Change struct {
	Path string
	Prev Stat
	Curr Stat
}

// Removed reports whether the file no longer exists.
func (c Change) Removed() bool { return c.Prev.Exists && !c.Curr.Exists }

// Watcher monitors files for modification.
type Watcher interface {
	// Watch starts monitoring path and calls onChange for every detected
	// change. Watching a path that is already watched replaces the previous
	// registration. The interval only applies to polling backends.
	Watch(path string, interval time.Duration, onChange func(Change)) error

	// Unwatch stops monitoring path. It is a no-op for unknown paths.
	Unwatch(path string)

	// Close stops monitoring every path.
	Close() error
}

// New returns a Watcher for the given backend. An empty backend means poll.
func New(backend Backend, logger *slog.Logger) (Watcher, error) {
	switch backend {
	case "", BackendPoll:
		return NewPoller(logger), nil
	case BackendNative:
		return NewNativeWatcher(logger, nil)
	case BackendAuto:
		w, err := NewNativeWatcher(logger, NewPoller(logger))
		if err != nil {
			loggerOrDefault(logger).Warn("native file events unavailable, polling instead", "error", err)
			return NewPoller(logger), nil
		}
		return w, nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q (valid: poll, native, auto)", backend)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// statFunc is swapped in tests.
type statFunc func(path string) Stat
