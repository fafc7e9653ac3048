package doctor

import (
	"fmt"

	"github.com/thoreinstein/mcpsel/internal/mcp/validator"
)

// RegistryEntriesCheck lints every tool definition in the registry.
type RegistryEntriesCheck struct {
	src Source
}

var _ Check = (*RegistryEntriesCheck)(nil)

// NewRegistryEntriesCheck creates a registry entry lint check.
func NewRegistryEntriesCheck(src Source) *RegistryEntriesCheck {
	return &RegistryEntriesCheck{src: src}
}

func (c *RegistryEntriesCheck) Name() string     { return "registry-entries" }
func (c *RegistryEntriesCheck) Category() string { return "registry" }

// Run reports entries a platform would likely reject as errors and
// questionable ones as warnings.
func (c *RegistryEntriesCheck) Run() *CheckResult {
	reg, err := c.src.Registry()
	if err != nil {
		return newResult(c, SeverityInfo, "skipped: tool registry is not available")
	}

	issues := validator.New().Validate(reg)
	if len(issues) == 0 {
		return newResult(c, SeverityPass, fmt.Sprintf("%d tool definition(s) look valid", reg.Len()))
	}

	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		msgs = append(msgs, issue.Error())
	}
	nErr, nWarn := validator.Count(issues)

	status := SeverityWarning
	if nErr > 0 {
		status = SeverityError
	}
	r := newResult(c, status, fmt.Sprintf("%d error(s), %d warning(s) in tool definitions", nErr, nWarn))
	r.Details = map[string]any{"issues": msgs}
	r.FixHint = "run 'mcpsel edit registry' to correct the entries"
	return r
}
