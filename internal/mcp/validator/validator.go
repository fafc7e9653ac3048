package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/thoreinstein/mcpsel/internal/mcp"
)

type Option func(*Validator)

// Validator lints registry entries.
type Validator struct {
	allowEmpty bool
}

func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithAllowEmpty silences the warning for a registry without servers.
func WithAllowEmpty(allow bool) Option {
	return func(v *Validator) { v.allowEmpty = allow }
}

// Validate returns the issues found in cfg, ordered by tool id, or nil.
func (v *Validator) Validate(cfg *mcp.Config) []*Issue {
	if cfg == nil {
		return []*Issue{{Message: "registry is nil", Severity: SeverityError}}
	}

	var out []*Issue
	if cfg.Len() == 0 && !v.allowEmpty {
		out = append(out, &Issue{
			Message:  "registry has no servers; nothing can be selected",
			Severity: SeverityWarning,
			Err:      ErrEmptyConfig,
		})
	}
	for _, id := range cfg.IDs() {
		out = append(out, lintServer(id, cfg.MCPServers[id])...)
	}
	return out
}

func lintServer(id string, s *mcp.Server) []*Issue {
	var out []*Issue
	report := func(sev Severity, field string, err error, msg string) {
		out = append(out, &Issue{ID: id, Field: field, Message: msg, Severity: sev, Err: err})
	}

	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		report(SeverityWarning, "", ErrSuspiciousID,
			"tool id contains whitespace; quote it when passing it to save or toggle")
	}
	if s.IsNull() {
		report(SeverityError, "", ErrNullServer, "definition is null")
		return out
	}

	url, _ := s.Extra["url"].(string)
	if s.Command == "" && url == "" {
		report(SeverityError, "command", ErrMissingCommand,
			"server must have command (for local) or url (for remote)")
	} else if s.Command != "" && url != "" {
		report(SeverityWarning, "", nil,
			"server has both command and url; platforms disagree on which wins")
	}

	for key := range s.Env {
		if strings.TrimSpace(key) == "" {
			report(SeverityError, "env", ErrEmptyEnvKey, "environment variable key cannot be empty")
			break
		}
	}
	for i, arg := range s.Args {
		if arg == "" {
			report(SeverityWarning, "args", nil, fmt.Sprintf("argument %d is empty", i))
		}
	}
	return out
}
