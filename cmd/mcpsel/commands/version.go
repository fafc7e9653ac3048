package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/cmd"
)

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output build information as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		b := cmd.Current()
		w := c.OutOrStdout()
		if versionJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}
		fmt.Fprintf(w, "mcpsel version %s (%s)\n", b.Version, b.Platform)
		fmt.Fprintf(w, "  commit: %s\n  built:  %s\n  go:     %s\n", b.Commit, b.Date, b.GoVersion)
		return nil
	},
}
