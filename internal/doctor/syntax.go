package doctor

import (
	"encoding/json"
	"fmt"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/internal/settings"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

// SettingsSyntaxCheck parses the settings document from disk.
type SettingsSyntaxCheck struct {
	src Source
}

var _ Check = (*SettingsSyntaxCheck)(nil)

// NewSettingsSyntaxCheck creates a settings syntax check.
func NewSettingsSyntaxCheck(src Source) *SettingsSyntaxCheck {
	return &SettingsSyntaxCheck{src: src}
}

func (c *SettingsSyntaxCheck) Name() string     { return "settings-syntax" }
func (c *SettingsSyntaxCheck) Category() string { return "settings" }

// Run reports a missing file as a warning since defaults apply, and any
// parse or validation failure as an error.
func (c *SettingsSyntaxCheck) Run() *CheckResult {
	path := c.src.SettingsPath()
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			r := newResult(c, SeverityWarning, "settings file not found; using an empty platform list")
			r.Details = map[string]any{"path": path}
			r.FixHint = "create " + path + ` containing {"platforms": []}`
			return r
		}
		r := newResult(c, SeverityError, fmt.Sprintf("cannot read settings: %v", err))
		r.Details = map[string]any{"path": path}
		return r
	}

	doc, err := settings.Parse(data)
	if err != nil {
		r := newResult(c, SeverityError, fmt.Sprintf("settings are invalid: %v", err))
		r.Details = map[string]any{"path": path}
		r.FixHint = "fix the reported position; // and /* */ comments are allowed"
		return r
	}

	r := newResult(c, SeverityPass, fmt.Sprintf("%d platform(s) declared", len(doc.Platforms)))
	r.Details = map[string]any{"path": path, "platforms": doc.Names()}
	return r
}

// RegistryPathCheck reports where the registry path came from.
type RegistryPathCheck struct {
	src  Source
	args []string
}

var _ Check = (*RegistryPathCheck)(nil)

// NewRegistryPathCheck creates a registry path resolution check. args are
// the start-arguments consulted for --database=.
func NewRegistryPathCheck(src Source, args []string) *RegistryPathCheck {
	return &RegistryPathCheck{src: src, args: args}
}

func (c *RegistryPathCheck) Name() string     { return "registry-path" }
func (c *RegistryPathCheck) Category() string { return "registry" }

// Run always reports SeverityInfo.
func (c *RegistryPathCheck) Run() *CheckResult {
	origin := "default"
	if c.src.Settings().DatabasePath != "" {
		origin = "settings database_path"
	} else if v, ok := paths.ArgValue(c.args, paths.DatabaseArgPrefix); ok && v != "" {
		origin = "--database argument"
	}

	path := c.src.RegistryPath()
	r := newResult(c, SeverityInfo, fmt.Sprintf("%s (from %s)", path, origin))
	r.Details = map[string]any{"path": path, "source": origin}
	return r
}

// RegistrySyntaxCheck parses the tool registry from disk.
type RegistrySyntaxCheck struct {
	src Source
}

var _ Check = (*RegistrySyntaxCheck)(nil)

// NewRegistrySyntaxCheck creates a registry syntax check.
func NewRegistrySyntaxCheck(src Source) *RegistrySyntaxCheck {
	return &RegistrySyntaxCheck{src: src}
}

func (c *RegistrySyntaxCheck) Name() string     { return "registry-syntax" }
func (c *RegistrySyntaxCheck) Category() string { return "registry" }

// Run reports any failure as an error: nothing can be selected without a
// registry.
func (c *RegistrySyntaxCheck) Run() *CheckResult {
	path := c.src.RegistryPath()
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		r := newResult(c, SeverityError, fmt.Sprintf("cannot read registry: %v", err))
		r.Details = map[string]any{"path": path}
		if errors.Is(err, errors.ErrNotFound) {
			r.Message = "registry file not found"
			r.FixHint = "create " + path + ` containing {"mcpServers": {}} or pass --database`
		}
		return r
	}

	if msg := syntaxError(data); msg != "" {
		r := newResult(c, SeverityError, msg)
		r.Details = map[string]any{"path": path}
		r.FixHint = "the registry is strict JSON; comments are not allowed"
		return r
	}

	reg, err := mcp.ParseRegistry(data)
	if err != nil {
		r := newResult(c, SeverityError, fmt.Sprintf("registry is invalid: %v", err))
		r.Details = map[string]any{"path": path}
		return r
	}

	r := newResult(c, SeverityPass, fmt.Sprintf("%d tool(s) available", reg.Len()))
	r.Details = map[string]any{"path": path, "tools": reg.Len()}
	return r
}

// syntaxError returns a positioned description of the first JSON syntax
// error in data, or "" when data is well formed.
func syntaxError(data []byte) string {
	var v any
	err := json.Unmarshal(data, &v)
	if err == nil {
		return ""
	}
	return formatJSONError(err, data)
}

// formatJSONError extracts position information from JSON syntax errors.
func formatJSONError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}
	return fmt.Sprintf("JSON error: %v", err)
}

// offsetToLineCol converts a byte offset to 1-indexed line and column numbers.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	offset = max(0, min(offset, len(data)))

	line = 1
	lineStart := 0
	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}
