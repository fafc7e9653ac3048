// Package cli holds presentation-side state shared by the mcpsel commands:
// the set of selected tools and the session that reconciles it with
// change notifications.
package cli

import (
	"maps"
	"slices"

	"github.com/thoreinstein/mcpsel/internal/mcp"
)

// Selection is a set of selected tool ids. The zero value is empty and
// ready to use.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns a selection containing ids.
func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// FromConfig selects every server saved in doc.
func FromConfig(doc *mcp.Config) *Selection {
	return NewSelection(doc.IDs()...)
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids, sorted.
func (s *Selection) IDs() []string {
	return slices.Sorted(maps.Keys(s.ids))
}

// Filter drops every id that reg does not define and returns the dropped
// ids, sorted. A nil registry drops nothing; an unavailable registry says
// nothing about which ids are stale.
func (s *Selection) Filter(reg *mcp.Config) []string {
	if reg == nil {
		return nil
	}
	var dropped []string
	for id := range s.ids {
		if !reg.Has(id) {
			dropped = append(dropped, id)
			delete(s.ids, id)
		}
	}
	slices.Sort(dropped)
	return dropped
}

// Build copies the selected servers out of reg into a new document. Ids
// that reg does not define are skipped.
func (s *Selection) Build(reg *mcp.Config) *mcp.Config {
	if reg == nil {
		return mcp.NewConfig()
	}
	doc, _ := reg.Subset(s.IDs())
	return doc
}
