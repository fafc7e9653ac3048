package cli

import (
	"slices"
	"sync"

	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/notify"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

// Change summarizes what Session.Apply did with an event.
type Change struct {
	Event notify.Event
	// Dropped lists selected ids removed because the new registry lacks
	// them.
	Dropped []string
	// PlatformChanged is set when the current platform disappeared from
	// settings and the session moved to another one (or to none).
	PlatformChanged bool
	// Previous is the platform before a PlatformChanged switch.
	Previous string
}

// Session is the presentation state for one platform: its selection and
// the last known settings and registry. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	platform  string
	selection *Selection
	settings  *settings.Document
	registry  *mcp.Config
	available bool
}

// NewSession starts a session on platform with the given state. A nil
// registry marks the registry unavailable.
func NewSession(platform string, doc *settings.Document, reg *mcp.Config, sel *Selection) *Session {
	if sel == nil {
		sel = NewSelection()
	}
	if doc == nil {
		doc = settings.Default()
	}
	s := &Session{
		platform:  platform,
		selection: sel,
		settings:  doc,
		registry:  reg,
		available: reg != nil,
	}
	s.selection.Filter(reg)
	return s
}

// Apply reconciles the session with ev.
//
// A registry update replaces the registry and filters the selection so
// every selected id exists in it. A registry error marks the registry
// unavailable and keeps the selection untouched. A settings update keeps
// the current platform when it still exists and otherwise switches to the
// first platform, or to none.
func (s *Session) Apply(ev notify.Event) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := Change{Event: ev}
	switch ev.Kind {
	case notify.RegistryUpdated:
		if ev.Registry == nil {
			break
		}
		s.registry = ev.Registry
		s.available = true
		ch.Dropped = s.selection.Filter(ev.Registry)
	case notify.RegistryError:
		s.registry = nil
		s.available = false
	case notify.SettingsUpdated:
		if ev.Settings == nil {
			break
		}
		s.settings = ev.Settings
		if s.platform != "" && slices.Contains(ev.Settings.Names(), s.platform) {
			break
		}
		next := ""
		if names := ev.Settings.Names(); len(names) > 0 {
			next = names[0]
		}
		if next != s.platform {
			ch.PlatformChanged = true
			ch.Previous = s.platform
			s.platform = next
		}
	}
	return ch
}

// Platform returns the current platform, or "" when none is chosen.
func (s *Session) Platform() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform
}

// SetPlatform switches platform and replaces the selection with sel.
func (s *Session) SetPlatform(name string, sel *Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel == nil {
		sel = NewSelection()
	}
	s.platform = name
	s.selection = sel
	if s.available {
		s.selection.Filter(s.registry)
	}
}

// Selected returns the selected ids, sorted.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// Toggle flips id in the selection. Ids the registry does not define are
// rejected while the registry is available.
func (s *Session) Toggle(id string) (selected bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.available && !s.registry.Has(id) {
		return s.selection.Has(id), false
	}
	return s.selection.Toggle(id), true
}

// Registry returns the last known registry and whether it is available.
func (s *Session) Registry() (*mcp.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry, s.available
}

// Settings returns the last known settings document.
func (s *Session) Settings() *settings.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Document builds the document to save for the current selection. It
// returns nil while the registry is unavailable.
func (s *Session) Document() *mcp.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return nil
	}
	return s.selection.Build(s.registry)
}
