package doctor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/platform"
)

// PlatformConfigCheck parses every generated platform file.
type PlatformConfigCheck struct {
	plats Platforms
}

var _ Check = (*PlatformConfigCheck)(nil)

// NewPlatformConfigCheck creates a platform config syntax check.
func NewPlatformConfigCheck(plats Platforms) *PlatformConfigCheck {
	return &PlatformConfigCheck{plats: plats}
}

func (c *PlatformConfigCheck) Name() string     { return "platform-configs" }
func (c *PlatformConfigCheck) Category() string { return "platform" }

// platformFile is one entry of the check details.
type platformFile struct {
	Platform string `json:"platform"`
	Path     string `json:"path"`
	State    string `json:"state"`
	Servers  int    `json:"servers"`
	Message  string `json:"message,omitempty"`
}

// Run reports unreadable files as warnings. Reads of such files fall back
// to an empty selection, so they never block.
func (c *PlatformConfigCheck) Run() *CheckResult {
	statuses := c.plats.StatusAll()
	if len(statuses) == 0 {
		return newResult(c, SeverityInfo, "no platforms declared in settings")
	}

	files := make([]platformFile, 0, len(statuses))
	var present, missing, invalid int
	var broken []string
	for _, s := range statuses {
		f := platformFile{Platform: s.Name, Path: s.Path, State: string(s.State), Servers: len(s.Servers)}
		switch s.State {
		case platform.StatePresent:
			present++
		case platform.StateMissing:
			missing++
		case platform.StateInvalid:
			invalid++
			broken = append(broken, s.Name)
			if s.Err != nil {
				f.Message = s.Err.Error()
			}
		}
		files = append(files, f)
	}

	details := map[string]any{
		"files":   files,
		"present": present,
		"missing": missing,
		"invalid": invalid,
	}

	if invalid > 0 {
		r := newResult(c, SeverityWarning, fmt.Sprintf("%d platform file(s) cannot be parsed: %s", invalid, strings.Join(broken, ", ")))
		r.Details = details
		r.FixHint = "save the platform again to overwrite the file"
		return r
	}

	r := newResult(c, SeverityPass, fmt.Sprintf("%d saved, %d not saved yet", present, missing))
	r.Details = details
	return r
}

// StaleSelectionCheck finds saved tool ids that the registry no longer
// contains.
type StaleSelectionCheck struct {
	src   Source
	plats Platforms
}

var _ Check = (*StaleSelectionCheck)(nil)

// NewStaleSelectionCheck creates a stale selection check.
func NewStaleSelectionCheck(src Source, plats Platforms) *StaleSelectionCheck {
	return &StaleSelectionCheck{src: src, plats: plats}
}

func (c *StaleSelectionCheck) Name() string     { return "stale-selection" }
func (c *StaleSelectionCheck) Category() string { return "registry" }

// Run is skipped with SeverityInfo while the registry is unavailable.
func (c *StaleSelectionCheck) Run() *CheckResult {
	reg, err := c.src.Registry()
	if err != nil {
		return newResult(c, SeverityInfo, "skipped: tool registry is not available")
	}

	stale := make(map[string][]string)
	var names []string
	total := 0
	for _, s := range c.plats.StatusAll() {
		if s.State != platform.StatePresent {
			continue
		}
		var ids []string
		for _, id := range s.Servers {
			if !reg.Has(id) {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			stale[s.Name] = ids
			names = append(names, s.Name)
			total += len(ids)
		}
	}

	if total == 0 {
		return newResult(c, SeverityPass, "every saved tool exists in the registry")
	}

	slices.Sort(names)
	r := newResult(c, SeverityWarning, fmt.Sprintf("%d saved tool(s) missing from the registry in %s", total, strings.Join(names, ", ")))
	r.Details = map[string]any{"stale": stale}
	r.FixHint = "re-save the affected platforms to drop the missing tools"
	return r
}
