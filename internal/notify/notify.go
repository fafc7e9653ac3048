// Package notify delivers reconciliation events from the config store and
// platform manager to presentation-side subscribers.
//
// Publishing never blocks. Every subscriber owns a goroutine and an
// unbounded FIFO queue, so a slow consumer delays only itself and always
// sees events in publish order.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

// Kind identifies the type of an Event.
type Kind string

const (
	// SettingsUpdated carries the new settings document.
	SettingsUpdated Kind = "settings.updated"
	// SettingsError reports a settings reload failure.
	SettingsError Kind = "settings.error"
	// RegistryUpdated carries the new tool registry.
	RegistryUpdated Kind = "registry.updated"
	// RegistryError reports that the registry could not be loaded and is
	// now unavailable.
	RegistryError Kind = "registry.error"
	// BatchError reports a failed post-save command.
	BatchError Kind = "batch.error"
)

// Event is a single notification.
type Event struct {
	Kind     Kind
	Settings *settings.Document
	Registry *mcp.Config
	Message  string
	Path     string
	Time     time.Time
}

// Publisher is the producer side of a Bus.
type Publisher interface {
	Publish(Event)
}

// Bus fans events out to subscribers.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
	logger *slog.Logger
}

// NewBus returns an empty Bus. A nil logger uses slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[uint64]*subscriber),
		logger: logger,
	}
}

// Publish enqueues ev for every current subscriber. A zero Time is set to
// now. Publishing on a closed bus is a no-op.
func (b *Bus) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.logger.Debug("publish", "kind", string(ev.Kind), "path", ev.Path, "subscribers", len(b.subs))
	for _, s := range b.subs {
		s.push(ev)
	}
}

// Subscribe registers fn to receive every event published after this call.
// fn runs on a goroutine owned by the subscription. The returned cancel
// function stops delivery; events still queued are discarded. After Close,
// Subscribe returns a no-op cancel and fn is never called.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return func() {}
	}

	id := b.nextID
	b.nextID++
	s := newSubscriber(fn)
	b.subs[id] = s
	go s.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			s.stop()
		})
	}
}

// Close stops all subscribers and rejects further publishes. Close waits
// for in-progress callbacks to return. Callbacks must not call Close.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[uint64]*subscriber)
	b.mu.Unlock()

	for _, s := range subs {
		s.stop()
		<-s.done
	}
}

// Sync blocks until every subscriber has handled the events queued for it
// when Sync was called. Callbacks must not call Sync.
func (b *Bus) Sync() {
	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.drain()
	}
}

type subscriber struct {
	fn   func(Event)
	mu   sync.Mutex
	cond *sync.Cond
	q    []Event
	busy bool
	halt bool
	done chan struct{}
}

func newSubscriber(fn func(Event)) *subscriber {
	s := &subscriber{fn: fn, done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *subscriber) push(ev Event) {
	s.mu.Lock()
	s.q = append(s.q, ev)
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *subscriber) stop() {
	s.mu.Lock()
	s.halt = true
	s.q = nil
	s.mu.Unlock()
	s.cond.Broadcast()
}

// drain waits until the queue is empty and no callback is running.
func (s *subscriber) drain() {
	s.mu.Lock()
	for (len(s.q) > 0 || s.busy) && !s.halt {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

func (s *subscriber) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		if s.busy {
			s.busy = false
			s.cond.Broadcast()
		}
		for len(s.q) == 0 && !s.halt {
			s.cond.Wait()
		}
		if s.halt {
			s.mu.Unlock()
			return
		}
		ev := s.q[0]
		s.q[0] = Event{}
		s.q = s.q[1:]
		s.busy = true
		s.mu.Unlock()

		s.fn(ev)
	}
}
