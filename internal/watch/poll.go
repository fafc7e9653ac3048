package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Poller is a Watcher that stats each watched file on its own ticker.
type Poller struct {
	logger *slog.Logger
	stat   statFunc

	mu      sync.Mutex
	entries map[string]*pollEntry
	closed  bool
}

type pollEntry struct {
	path     string
	onChange func(Change)
	stat     statFunc
	last     Stat
	stopped  atomic.Bool
	stop     chan struct{}
}

// NewPoller creates a polling watcher.
func NewPoller(logger *slog.Logger) *Poller {
	return &Poller{
		logger:  loggerOrDefault(logger),
		stat:    StatFile,
		entries: make(map[string]*pollEntry),
	}
}

// Watch implements Watcher. The current state of the file is recorded
// immediately; only later differences are reported.
func (p *Poller) Watch(path string, interval time.Duration, onChange func(Change)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	path = filepath.Clean(path)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if old, ok := p.entries[path]; ok {
		old.halt()
	}

	e := &pollEntry{
		path:     path,
		onChange: onChange,
		stat:     p.stat,
		last:     p.stat(path),
		stop:     make(chan struct{}),
	}
	p.entries[path] = e
	go e.run(interval)

	p.logger.Debug("watching file", "path", path, "interval", interval)
	return nil
}

// Unwatch implements Watcher.
func (p *Poller) Unwatch(path string) {
	path = filepath.Clean(path)

	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[path]; ok {
		e.halt()
		delete(p.entries, path)
		p.logger.Debug("stopped watching file", "path", path)
	}
}

// Close implements Watcher.
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for path, e := range p.entries {
		e.halt()
		delete(p.entries, path)
	}
	p.closed = true
	return nil
}

// Watching reports whether path is currently registered.
func (p *Poller) Watching(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[filepath.Clean(path)]
	return ok
}

func (e *pollEntry) halt() {
	if e.stopped.CompareAndSwap(false, true) {
		close(e.stop)
	}
}

func (e *pollEntry) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.poll()
		}
	}
}

// poll stats the file once and reports a change if the heuristic fires.
// Only the entry's own goroutine calls it, so last needs no lock.
func (e *pollEntry) poll() {
	curr := e.stat(e.path)
	prev := e.last
	e.last = curr
	if !Changed(prev, curr) || e.stopped.Load() {
		return
	}
	e.onChange(Change{Path: e.path, Prev: prev, Curr: curr})
}
