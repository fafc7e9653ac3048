package doctor

import "github.com/thoreinstein/mcpsel/internal/errors"

// Severity orders check outcomes from harmless to blocking. A report's
// exit status follows its worst severity.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

func (s Severity) valid() bool { return s >= SeverityPass && s <= SeverityError }

func (s Severity) String() string {
	if !s.valid() {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name so JSON reports stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, errors.Newf("unknown severity %d", int(s))
	}
	return []byte(severityNames[s]), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return errors.Newf("unknown severity %q", text)
}

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details carries check-specific context. Keys depend on the check.
	Details map[string]any `json:"details,omitempty"`

	// Fixable reports whether Fix can repair the issue.
	Fixable bool   `json:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary counts results per severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (s *Summary) add(sev Severity) {
	if counter := map[Severity]*int{
		SeverityPass:    &s.Passed,
		SeverityInfo:    &s.Info,
		SeverityWarning: &s.Warnings,
		SeverityError:   &s.Errors,
	}[sev]; counter != nil {
		*counter++
	}
}

func newResult(c Check, status Severity, message string) *CheckResult {
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   status,
		Message:  message,
	}
}
