package doctor

import (
	"fmt"
	"os"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/paths"
)

// OutputDirCheck verifies that platform files can be written below the
// resolved output directory.
type OutputDirCheck struct {
	src     Source
	missing string
}

var (
	_ Check = (*OutputDirCheck)(nil)
	_ Fixer = (*OutputDirCheck)(nil)
)

// NewOutputDirCheck creates an output directory check.
func NewOutputDirCheck(src Source) *OutputDirCheck {
	return &OutputDirCheck{src: src}
}

func (c *OutputDirCheck) Name() string     { return "output-dir" }
func (c *OutputDirCheck) Category() string { return "platform" }

// Run reports a missing directory as info because saving creates it.
func (c *OutputDirCheck) Run() *CheckResult {
	dir := c.src.OutputDir()
	c.missing = ""

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.missing = dir
		r := newResult(c, SeverityInfo, dir+" does not exist yet; it is created on first save")
		r.Details = map[string]any{"path": dir}
		r.Fixable = true
		r.FixHint = "mkdir -p " + dir
		return r
	case err != nil:
		r := newResult(c, SeverityError, fmt.Sprintf("cannot stat output directory: %v", err))
		r.Details = map[string]any{"path": dir}
		return r
	case !info.IsDir():
		r := newResult(c, SeverityError, dir+" is not a directory")
		r.Details = map[string]any{"path": dir}
		return r
	}

	if err := checkWritable(dir); err != nil {
		r := newResult(c, SeverityError, dir+" is not writable")
		r.Details = map[string]any{"path": dir, "permissions": formatPermissions(info.Mode())}
		r.FixHint = "chmod u+w " + dir
		return r
	}

	r := newResult(c, SeverityPass, dir+" is writable")
	r.Details = map[string]any{"path": dir}
	return r
}

// CanFix reports whether the last Run found the directory missing.
func (c *OutputDirCheck) CanFix() bool {
	return c.missing != ""
}

// Fix creates the missing output directory.
func (c *OutputDirCheck) Fix() []FixResult {
	if c.missing == "" {
		return nil
	}
	res := FixResult{Path: c.missing}
	if err := paths.EnsureDir(c.missing, secureDirPerm); err != nil {
		res.Description = fmt.Sprintf("failed to create directory: %v", err)
		res.Error = err
		return []FixResult{res}
	}
	c.missing = ""
	res.Fixed = true
	res.Description = "created directory"
	return []FixResult{res}
}

// checkWritable creates and removes a temporary file in dir.
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".mcpsel-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
