package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/internal/app"
	"github.com/thoreinstein/mcpsel/internal/cli"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/format"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/platform"
)

var (
	showFormat      string
	showShowSecrets bool
)

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "table", "output format: table, json, yaml, toml")
	showCmd.Flags().BoolVar(&showShowSecrets, "show-secrets", false, "reveal masked secrets in the saved document")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [platform]",
	Short: "Show platforms or one platform's saved selection",
	Long: `Without an argument, list every platform declared in settings with the
state of its generated file.

With a platform name, list the registry and mark the tools saved for that
platform. Saved tools that the registry no longer defines are reported as
stale.`,
	Example: `  mcpsel show
  mcpsel show claude
  mcpsel show claude --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	table := strings.EqualFold(showFormat, "table")
	var f format.Format
	if !table {
		var err error
		if f, err = format.Parse(showFormat); err != nil {
			return errors.NewUserError(err, "use --format table, json, yaml or toml")
		}
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	w := cmd.OutOrStdout()
	if len(args) == 0 {
		statuses := a.Platforms().StatusAll()
		if !table {
			return format.Write(w, statuses, f)
		}
		return writeStatusTable(w, statuses)
	}

	name := args[0]
	doc := a.ReadPlatformConfig(name)
	if !table {
		if !showShowSecrets {
			doc = redacted(doc)
		}
		return format.Write(w, doc, f)
	}
	return writePlatform(w, a, name, doc)
}

func writeStatusTable(w io.Writer, statuses []platform.Status) error {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No platforms declared in settings.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATFORM\tSTATE\tTOOLS\tPATH")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.State, len(s.Servers), s.Path)
	}
	return tw.Flush()
}

// writePlatform prints the registry with the platform's selection marked.
func writePlatform(w io.Writer, a *app.App, name string, doc *mcp.Config) error {
	fmt.Fprintf(w, "%s %s\n", bold(name), gray(a.Platforms().Path(name)))

	sel := cli.FromConfig(doc)
	reg, err := a.GetRegistry()
	if err != nil {
		fmt.Fprintf(w, "%s registry unavailable: %v\n", yellow("!"), err)
		for _, id := range sel.IDs() {
			fmt.Fprintf(w, "  %s\n", id)
		}
		return nil
	}

	stale := sel.Filter(reg)
	if reg.Len() > 0 {
		if err := writeServerTable(w, redacted(reg), func(id string) string {
			if sel.Has(id) {
				return "*"
			}
			return ""
		}); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "%d of %d tool(s) selected\n", sel.Len(), reg.Len())
	if len(stale) > 0 {
		fmt.Fprintf(w, "%s saved but missing from the registry: %s\n", yellow("!"), strings.Join(stale, ", "))
	}
	return nil
}
