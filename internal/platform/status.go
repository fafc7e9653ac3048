package platform

import (
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

// ConfigState describes a platform's saved config file.
type ConfigState string

const (
	// StateMissing indicates no file has been saved yet.
	StateMissing ConfigState = "missing"
	// StatePresent indicates the file exists and parses.
	StatePresent ConfigState = "present"
	// StateInvalid indicates the file exists but cannot be read or parsed.
	StateInvalid ConfigState = "invalid"
)

// Status describes one platform's output file.
type Status struct {
	Name  string      `json:"name"`
	Path  string      `json:"path"`
	State ConfigState `json:"state"`
	// Servers lists the saved server ids, sorted.
	Servers []string `json:"servers,omitempty"`
	// Declared is false for names that have no settings entry.
	Declared bool  `json:"declared"`
	Err      error `json:"-"`
}

// Status inspects the saved file of the named platform.
func (m *Manager) Status(name string) Status {
	p, declared := m.src.Settings().Platform(name)
	return m.status(p, declared)
}

// StatusAll inspects every platform in settings order.
func (m *Manager) StatusAll() []Status {
	doc := m.src.Settings()
	out := make([]Status, 0, len(doc.Platforms))
	for _, p := range doc.Platforms {
		out = append(out, m.status(p, true))
	}
	return out
}

func (m *Manager) status(p settings.Platform, declared bool) Status {
	s := Status{
		Name:     p.Name,
		Path:     m.path(p),
		Declared: declared,
	}
	doc, err := load(s.Path)
	switch {
	case err == nil:
		s.State = StatePresent
		s.Servers = doc.IDs()
	case errors.Is(err, errors.ErrNotFound):
		s.State = StateMissing
	default:
		s.State = StateInvalid
		s.Err = err
	}
	return s
}
