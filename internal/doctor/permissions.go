package doctor

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

const (
	// secureFilePerm is the target permission for documents (rw-r--r--).
	secureFilePerm os.FileMode = 0o644

	// secureDirPerm is the target permission for directories (rwxr-xr-x).
	secureDirPerm os.FileMode = 0o755
)

// PathPermissionCheck looks for world-writable and unreadable files among
// the settings document, the registry, the output directory and every
// generated platform file. The registry and platform files carry server
// environments, which often hold credentials.
type PathPermissionCheck struct {
	src   Source
	plats Platforms
	fixer PermissionFixer
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a path permission check.
func NewPathPermissionCheck(src Source, plats Platforms) *PathPermissionCheck {
	return &PathPermissionCheck{src: src, plats: plats}
}

func (c *PathPermissionCheck) Name() string     { return "path-permissions" }
func (c *PathPermissionCheck) Category() string { return "filesystem" }

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Owner       string // "settings", "registry" or a platform name
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	FixHint     string
}

type target struct {
	path, owner string
	dir         bool
	secret      bool
}

func (c *PathPermissionCheck) targets() []target {
	out := []target{
		{path: c.src.SettingsPath(), owner: "settings"},
		{path: c.src.RegistryPath(), owner: "registry", secret: true},
		{path: c.src.OutputDir(), owner: "output", dir: true},
	}
	if c.plats != nil {
		for _, s := range c.plats.StatusAll() {
			out = append(out, target{path: s.Path, owner: s.Name, secret: true})
		}
	}
	return out
}

// Run executes the path and permission check. Missing paths are skipped.
func (c *PathPermissionCheck) Run() *CheckResult {
	var issues []pathIssue
	checked := 0
	for _, t := range c.targets() {
		found, ok := c.inspect(t)
		if !ok {
			continue
		}
		checked++
		issues = append(issues, found...)
	}
	c.fixer.setIssues(issues)
	return c.buildResult(issues, checked)
}

// CanFix reports whether the last Run found fixable issues.
func (c *PathPermissionCheck) CanFix() bool { return c.fixer.CanFix() }

// Fix applies the permission fixes found by the last Run.
func (c *PathPermissionCheck) Fix() []FixResult { return c.fixer.Fix() }

// inspect returns the issues of one target; ok is false when the path does
// not exist.
func (c *PathPermissionCheck) inspect(t target) (issues []pathIssue, ok bool) {
	kind := "file"
	if t.dir {
		kind = "directory"
	}

	info, err := os.Stat(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		return []pathIssue{{
			Path: t.path, Owner: t.owner, Type: kind,
			Problem:  fmt.Sprintf("cannot stat %s: %v", kind, err),
			Severity: SeverityError,
		}}, true
	}

	if t.dir != info.IsDir() {
		return []pathIssue{{
			Path: t.path, Owner: t.owner, Type: kind,
			Problem:  "unexpected " + modeKind(info) + " at " + kind + " path",
			Severity: SeverityError,
		}}, true
	}

	if !t.dir {
		f, err := os.Open(t.path)
		if err != nil {
			return []pathIssue{{
				Path: t.path, Owner: t.owner, Type: kind,
				Problem:     "file is not readable",
				Severity:    SeverityError,
				Permissions: formatPermissions(info.Mode()),
				Fixable:     true,
				FixHint:     fmt.Sprintf("chmod %04o %s", secureFilePerm, t.path),
			}}, true
		}
		f.Close()
	}

	// Unix permission bits do not apply on Windows
	if runtime.GOOS == "windows" {
		return nil, true
	}

	perm := info.Mode().Perm()
	want := secureFilePerm
	if t.dir {
		want = secureDirPerm
	}
	if perm&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path: t.path, Owner: t.owner, Type: kind,
			Problem:     kind + " is world-writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     fmt.Sprintf("chmod %04o %s", want, t.path),
		})
	} else if t.secret && perm&^secureFilePerm != 0 {
		issues = append(issues, pathIssue{
			Path: t.path, Owner: t.owner, Type: kind,
			Problem:     fmt.Sprintf("file may hold credentials and has mode %s (expected %04o or less)", formatPermissions(info.Mode()), secureFilePerm),
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     fmt.Sprintf("chmod %04o %s", secureFilePerm, t.path),
		})
	}
	return issues, true
}

func modeKind(info os.FileInfo) string {
	if info.IsDir() {
		return "directory"
	}
	return "file"
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return newResult(c, SeverityPass, fmt.Sprintf("all %d paths have valid permissions", checked))
	}

	status := SeverityWarning
	details := make([]map[string]any, 0, len(issues))
	var hints []string
	fixable := false
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			status = SeverityError
		}
		m := map[string]any{
			"path":     issue.Path,
			"owner":    issue.Owner,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			m["permissions"] = issue.Permissions
		}
		details = append(details, m)
		if issue.Fixable {
			fixable = true
			hints = append(hints, issue.FixHint)
		}
	}

	r := newResult(c, status, fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked))
	r.Details = map[string]any{
		"checked_paths": checked,
		"issue_count":   len(issues),
		"issues":        details,
	}
	r.Fixable = fixable
	r.FixHint = strings.Join(hints, "; ")
	return r
}

// formatPermissions returns a human-readable permission string (e.g. "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// PermissionFixer applies chmod fixes recorded by PathPermissionCheck.
type PermissionFixer struct {
	issues []pathIssue
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

// Fix attempts every fixable issue and reports one result per issue.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, f.fixIssue(issue))
		}
	}
	return results
}

func (f *PermissionFixer) fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	var perm os.FileMode
	switch issue.Type {
	case "file":
		perm = secureFilePerm
	case "directory":
		perm = secureDirPerm
	default:
		result.Description = "unknown type: " + issue.Type
		result.Error = errors.Newf("cannot fix unknown type: %s", issue.Type)
		return result
	}

	if err := os.Chmod(issue.Path, perm); err != nil {
		result.Description = fmt.Sprintf("failed to chmod %04o: %v", perm, err)
		result.Error = errors.Wrapf(err, "chmod %04o %s", perm, issue.Path)
		return result
	}

	result.Fixed = true
	result.Description = fmt.Sprintf("chmod %04o", perm)
	return result
}
