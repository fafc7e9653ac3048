package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/format"
)

var (
	registryFormat      string
	registryShowSecrets bool
)

func init() {
	registryCmd.Flags().StringVarP(&registryFormat, "format", "f", "table", "output format: table, json, yaml, toml")
	registryCmd.Flags().BoolVar(&registryShowSecrets, "show-secrets", false, "reveal masked secrets in env values and arguments")
	rootCmd.AddCommand(registryCmd)
}

var registryCmd = &cobra.Command{
	Use:     "registry",
	Aliases: []string{"tools"},
	Short:   "List the tools in the registry",
	Long: `List every tool server defined in the registry.

Environment values and arguments that look like credentials are masked by
default. Use --show-secrets to reveal them.`,
	Example: `  mcpsel registry
  mcpsel registry --format json
  mcpsel --database ~/mcp/database.json registry`,
	Args: cobra.NoArgs,
	RunE: runRegistry,
}

func runRegistry(cmd *cobra.Command, _ []string) error {
	table := strings.EqualFold(registryFormat, "table")
	var f format.Format
	if !table {
		var err error
		if f, err = format.Parse(registryFormat); err != nil {
			return errors.NewUserError(err, "use --format table, json, yaml or toml")
		}
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer closeApp(a)

	reg, err := a.GetRegistry()
	if err != nil {
		return registryError(err)
	}
	if !registryShowSecrets {
		reg = redacted(reg)
	}

	w := cmd.OutOrStdout()
	if !table {
		return format.Write(w, reg, f)
	}
	if reg.Len() == 0 {
		fmt.Fprintf(w, "No tools in %s\n", a.Store().RegistryPath())
		return nil
	}
	return writeServerTable(w, reg, nil)
}
