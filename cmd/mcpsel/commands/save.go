package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/internal/app"
	"github.com/thoreinstein/mcpsel/internal/cli"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
)

var saveAll bool

func init() {
	saveCmd.Flags().BoolVar(&saveAll, "all", false, "select every tool in the registry")
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(toggleCmd)
}

var saveCmd = &cobra.Command{
	Use:   "save <platform> [tool-id...]",
	Short: "Replace a platform's selection",
	Long: `Write the named tools to the platform's generated file, replacing the
previous selection. With no tool ids the file is written empty.

After writing, the platform's batch command runs with {{config_file_path}}
replaced by the written path. A failing batch command is reported as a
warning; the save itself still succeeds.`,
	Example: `  mcpsel save claude github filesystem
  mcpsel save claude --all
  mcpsel save claude`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSave,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <platform> <tool-id>...",
	Short: "Flip tools in a platform's saved selection",
	Long: `Add each named tool that is not selected and remove each one that is,
then save. Saved tools that the registry no longer defines are dropped.`,
	Example: `  mcpsel toggle claude github`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runToggle,
}

func runSave(cmd *cobra.Command, args []string) error {
	name, ids := args[0], args[1:]
	if saveAll && len(ids) > 0 {
		return errors.NewUserError(errors.New("--all conflicts with tool ids"), "pass either --all or tool ids")
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer closeApp(a)
	warnBatchErrors(a, cmd.ErrOrStderr())

	reg, err := a.GetRegistry()
	if err != nil {
		return registryError(err)
	}
	if saveAll {
		ids = reg.IDs()
	}
	if unknown := missing(reg, ids); len(unknown) > 0 {
		return errors.NewUserError(
			errors.Newf("unknown tool(s): %s", strings.Join(unknown, ", ")),
			"Run: mcpsel registry",
		)
	}

	return save(cmd.OutOrStdout(), a, name, cli.NewSelection(ids...), reg)
}

func runToggle(cmd *cobra.Command, args []string) error {
	name, ids := args[0], args[1:]

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer closeApp(a)
	warnBatchErrors(a, cmd.ErrOrStderr())

	reg, err := a.GetRegistry()
	if err != nil {
		return registryError(err)
	}

	s := cli.NewSession(name, a.GetSettings(), reg, cli.FromConfig(a.ReadPlatformConfig(name)))
	w := cmd.OutOrStdout()
	for _, id := range ids {
		on, ok := s.Toggle(id)
		switch {
		case !ok:
			return errors.NewUserError(errors.Newf("unknown tool %q", id), "Run: mcpsel registry")
		case on:
			fmt.Fprintf(w, "%s %s\n", green("+"), id)
		default:
			fmt.Fprintf(w, "%s %s\n", red("-"), id)
		}
	}

	return save(w, a, name, cli.NewSelection(s.Selected()...), reg)
}

// save builds the document for sel and writes it. A failed write exits
// with code 2.
func save(w io.Writer, a *app.App, name string, sel *cli.Selection, reg *mcp.Config) error {
	res := a.SavePlatformConfig(name, sel.Build(reg))
	if !res.Success {
		if errors.Is(res.Err, errors.ErrMissingName) {
			return errors.NewUserError(res.Err, "pass a platform name")
		}
		return errors.NewSystemError(res.Err, "check that the output directory is writable; run: mcpsel doctor")
	}
	fmt.Fprintf(w, "Saved %d tool(s) for %s to %s\n", sel.Len(), name, res.Path)
	return nil
}

// missing returns the ids reg does not define, in argument order.
func missing(reg *mcp.Config, ids []string) []string {
	var out []string
	for _, id := range ids {
		if !reg.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
