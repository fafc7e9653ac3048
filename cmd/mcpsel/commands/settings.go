package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/format"
	"github.com/thoreinstein/mcpsel/internal/logging"
)

var settingsFormat string

func init() {
	settingsCmd.Flags().StringVarP(&settingsFormat, "format", "f", "json", "output format: json, yaml, toml")
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Print the effective settings document",
	Long: `Print the settings document currently in effect.

A missing or invalid settings.json is replaced by an empty platform list;
the load error is logged as a warning.`,
	Example: `  mcpsel settings
  mcpsel settings --format yaml`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, _ []string) error {
	f, err := format.Parse(settingsFormat)
	if err != nil {
		return errors.NewUserError(err, "use --format json, yaml or toml")
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if err := a.Store().SettingsErr(); err != nil {
		logging.FromContext(cmd.Context()).Warn("settings could not be loaded, showing defaults",
			"path", a.Store().SettingsPath(), "error", err)
	}
	return format.Write(cmd.OutOrStdout(), a.GetSettings(), f)
}
