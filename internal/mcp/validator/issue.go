// Package validator lints tool registry entries. The registry is copied
// into platform files verbatim, so these findings never block loading;
// they point at entries a platform is likely to reject.
package validator

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

var (
	ErrEmptyConfig    = errors.New("registry has no servers")
	ErrNullServer     = errors.New("server definition is null")
	ErrMissingCommand = errors.New("server requires command or url")
	ErrEmptyEnvKey    = errors.New("environment variable key is empty")
	// ErrSuspiciousID marks ids that are awkward to pass on a command line.
	ErrSuspiciousID = errors.New("tool id contains whitespace")
)

// Severity is "error" for entries a platform will most likely reject and
// "warning" for questionable but usable ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding. ID is empty for registry-level issues.
type Issue struct {
	ID       string
	Field    string
	Message  string
	Severity Severity
	Err      error
}

func (i *Issue) Error() string {
	var b strings.Builder
	b.WriteString(string(i.Severity))
	b.WriteString(": ")
	if i.ID != "" {
		fmt.Fprintf(&b, "server %q", i.ID)
		if i.Field != "" {
			fmt.Fprintf(&b, " field %q", i.Field)
		}
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

func (i *Issue) Unwrap() error { return i.Err }

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []*Issue) bool {
	n, _ := Count(issues)
	return n > 0
}

// Count tallies issues by severity.
func Count(issues []*Issue) (errs, warnings int) {
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}
