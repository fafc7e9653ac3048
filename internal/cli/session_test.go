package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thoreinstein/mcpsel/internal/notify"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

func doc(names ...string) *settings.Document {
	d := settings.Default()
	for _, n := range names {
		d.Platforms = append(d.Platforms, settings.Platform{Name: n})
	}
	return d
}

func TestNewSession_FiltersInitialSelection(t *testing.T) {
	s := NewSession("claude", doc("claude"), registry(t, "fs"), NewSelection("fs", "gone"))
	assert.Equal(t, []string{"fs"}, s.Selected())
}

func TestSession_RegistryUpdateFiltersSelection(t *testing.T) {
	s := NewSession("claude", doc("claude"), registry(t, "fs", "git", "db"), NewSelection("fs", "git"))

	ch := s.Apply(notify.Event{Kind: notify.RegistryUpdated, Registry: registry(t, "fs", "db")})

	assert.Equal(t, []string{"git"}, ch.Dropped)
	assert.Equal(t, []string{"fs"}, s.Selected())
	assert.Equal(t, "claude", s.Platform(), "registry updates never change the platform")
}

func TestSession_RegistryErrorMarksUnavailable(t *testing.T) {
	s := NewSession("claude", doc("claude"), registry(t, "fs"), NewSelection("fs"))

	s.Apply(notify.Event{Kind: notify.RegistryError, Message: "boom"})

	reg, ok := s.Registry()
	assert.False(t, ok)
	assert.Nil(t, reg)
	assert.Nil(t, s.Document())
	assert.Equal(t, []string{"fs"}, s.Selected(), "selection survives an outage")

	s.Apply(notify.Event{Kind: notify.RegistryUpdated, Registry: registry(t, "fs")})
	_, ok = s.Registry()
	assert.True(t, ok)
	assert.Equal(t, []string{"fs"}, s.Document().IDs())
}

func TestSession_SettingsUpdate(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		next        *settings.Document
		want        string
		wantChanged bool
	}{
		{"platform kept", "b", doc("a", "b"), "b", false},
		{"platform removed switches to first", "b", doc("c", "a"), "c", true},
		{"no platforms left", "b", doc(), "", true},
		{"none chosen picks first", "", doc("x"), "x", true},
		{"none chosen and none available", "", doc(), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.current, doc("a", "b"), registry(t, "fs"), NewSelection("fs"))

			ch := s.Apply(notify.Event{Kind: notify.SettingsUpdated, Settings: tt.next})

			assert.Equal(t, tt.want, s.Platform())
			assert.Equal(t, tt.wantChanged, ch.PlatformChanged)
			if tt.wantChanged {
				assert.Equal(t, tt.current, ch.Previous)
			}
			assert.Equal(t, tt.next, s.Settings())
			assert.Equal(t, []string{"fs"}, s.Selected(), "settings updates keep the selection")
		})
	}
}

func TestSession_Toggle(t *testing.T) {
	s := NewSession("claude", doc("claude"), registry(t, "fs"), nil)

	selected, ok := s.Toggle("fs")
	assert.True(t, ok)
	assert.True(t, selected)

	_, ok = s.Toggle("unknown")
	assert.False(t, ok)

	s.Apply(notify.Event{Kind: notify.RegistryError})
	selected, ok = s.Toggle("fs")
	assert.True(t, ok)
	assert.False(t, selected)
}

func TestSession_SetPlatform(t *testing.T) {
	s := NewSession("a", doc("a", "b"), registry(t, "fs"), NewSelection("fs"))

	s.SetPlatform("b", NewSelection("fs", "stale"))

	assert.Equal(t, "b", s.Platform())
	assert.Equal(t, []string{"fs"}, s.Selected())
}

func TestSession_IgnoresUnrelatedEvents(t *testing.T) {
	s := NewSession("a", doc("a"), registry(t, "fs"), NewSelection("fs"))

	ch := s.Apply(notify.Event{Kind: notify.BatchError, Message: "exit 1"})
	s.Apply(notify.Event{Kind: notify.SettingsError})

	assert.False(t, ch.PlatformChanged)
	assert.Empty(t, ch.Dropped)
	assert.Equal(t, "a", s.Platform())
	assert.Equal(t, []string{"fs"}, s.Selected())
}
