package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/internal/editor"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/mcp/validator"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/internal/settings"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

// Skeletons written when the edited document does not exist yet.
const (
	settingsSkeleton = "{\n  // \"output_dir\": \"out\",\n  \"platforms\": []\n}\n"
	registrySkeleton = "{\n  \"mcpServers\": {}\n}\n"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit settings|registry",
	Short: "Open settings.json or the registry in $EDITOR",
	Long: `Open the settings document or the tool registry in your editor and
validate it when the editor exits.

Uses $EDITOR, then $VISUAL, then nano, then vi. A missing document is
created with an empty skeleton first.`,
	Example: `  mcpsel edit settings
  EDITOR="code --wait" mcpsel edit registry`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"settings", "registry"},
	RunE:      runEdit,
}

// openEditor is replaced in tests.
var openEditor = func(cmd *cobra.Command, path string) error {
	e := &editor.Editor{Stdin: cmd.InOrStdin(), Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
	return e.Open(cmd.Context(), path)
}

func runEdit(cmd *cobra.Command, args []string) error {
	var (
		skeleton string
		validate func([]byte) error
		issues   []*validator.Issue
	)
	switch args[0] {
	case "settings":
		skeleton = settingsSkeleton
		validate = func(data []byte) error { _, err := settings.Parse(data); return err }
	case "registry":
		skeleton = registrySkeleton
		validate = func(data []byte) error {
			reg, err := mcp.ParseRegistry(data)
			if err == nil {
				issues = validator.New().Validate(reg)
			}
			return err
		}
	default:
		return errors.NewUserError(errors.Newf("cannot edit %q", args[0]), "choose settings or registry")
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	path := a.Store().SettingsPath()
	if args[0] == "registry" {
		path = a.Store().RegistryPath()
	}
	closeApp(a)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
			return errors.NewSystemError(err, "")
		}
		if err := fileutil.AtomicWriteFile(path, []byte(skeleton), 0o644); err != nil {
			return errors.NewSystemError(err, "")
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Location: %s\n", path)
	if err := openEditor(cmd, path); err != nil {
		return errors.NewUserError(err, "set $EDITOR to an installed editor")
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if err := validate(data); err != nil {
		return errors.NewUserError(err, "run the same command again to fix it")
	}
	fmt.Fprintf(w, "%s %s is valid\n", green("✓"), path)
	for _, issue := range issues {
		fmt.Fprintf(w, "  %s %s\n", yellow("!"), issue.Error())
	}
	return nil
}
