// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// Editor runs an interactive editor attached to the given streams.
type Editor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Open edits path with the process's standard streams.
func Open(ctx context.Context, path string) error {
	e := &Editor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	return e.Open(ctx, path)
}

// Open blocks until the editor exits. A non-zero exit is returned as an
// error.
func (e *Editor) Open(ctx context.Context, path string) error {
	argv := Command()
	argv = append(argv, path)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Command returns the editor command line without the file argument.
// Fallback chain: $EDITOR, $VISUAL, nano, vi. Values are split on
// whitespace, so EDITOR="code --wait" works.
func Command() []string {
	for _, key := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return []string{"nano"}
	}
	return []string{"vi"}
}
