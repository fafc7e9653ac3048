package platform

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// Runner executes a batch command line.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// ShellRunner runs commands through the system shell: sh -c on Unix and
// cmd /C on Windows.
type ShellRunner struct {
	// Shell overrides the shell binary. Flags follow its base name: /C for
	// cmd, -c for anything else.
	Shell string
}

// Run executes command and waits for it. A non-zero exit returns an error
// carrying the trimmed combined output.
func (r *ShellRunner) Run(ctx context.Context, command string) error {
	shell, flag := r.shell()
	cmd := exec.CommandContext(ctx, shell, flag, command)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return errors.Wrapf(err, "%s: %s", command, msg)
		}
		return errors.Wrap(err, command)
	}
	return nil
}

func (r *ShellRunner) shell() (string, string) {
	shell := r.Shell
	if shell == "" {
		if runtime.GOOS == "windows" {
			shell = "cmd"
		} else {
			shell = "sh"
		}
	}
	base := strings.TrimSuffix(strings.ToLower(filepath.Base(shell)), ".exe")
	if base == "cmd" {
		return shell, "/C"
	}
	return shell, "-c"
}
