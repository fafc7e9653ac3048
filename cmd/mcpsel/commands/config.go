package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpsel/internal/config"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show mcpsel preferences",
	Long: `Show the preferences in effect and the file they came from.

Preferences live in mcpsel.yaml in the current directory or in
$XDG_CONFIG_HOME/mcpsel. Every key can be overridden from the environment
with the MCPSEL_ prefix, e.g. MCPSEL_WATCH_BACKEND=native.`,
	Example: `  mcpsel config
  mcpsel config get watch.interval
  mcpsel config set watch.backend native

See Also: mcpsel doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference and write the preferences file",
	Long: `Change one preference. The value is validated before the file is
written. Without an existing preferences file one is created in
$XDG_CONFIG_HOME/mcpsel.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func checkKey(key string) error {
	if slices.Contains(config.Keys(), key) {
		return nil
	}
	return errors.NewUserError(
		errors.Newf("unknown preference %q", key),
		"valid keys: "+strings.Join(config.Keys(), ", "),
	)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if used := config.Used(); used != "" {
		fmt.Fprintf(w, "# %s\n", used)
	} else {
		fmt.Fprintln(w, "# defaults (no preferences file)")
	}
	return writePrefs(w)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if err := checkKey(key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := checkKey(key); err != nil {
		return err
	}

	prev := viper.Get(key)
	viper.Set(key, value)

	var next config.Config
	if err := viper.Unmarshal(&next); err != nil {
		viper.Set(key, prev)
		return errors.NewUserError(errors.Wrapf(err, "invalid value for %s", key), "")
	}
	if errs := config.Validate(&next); len(errs) > 0 {
		viper.Set(key, prev)
		return errors.NewUserError(errors.Join(errs...), "")
	}

	path := config.Used()
	if path == "" {
		path = filepath.Join(paths.AppConfigDir(), config.FileName+".yaml")
	}
	data, err := yaml.Marshal(&next)
	if err != nil {
		return errors.Wrap(err, "marshaling preferences")
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "creating config directory"), "")
	}
	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "writing preferences"), "")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
	return nil
}

// writePrefs prints the preferences in effect in the preferences file
// layout, one entry per field of config.Config.
func writePrefs(w io.Writer) error {
	var c config.Config
	if err := viper.Unmarshal(&c); err != nil {
		return errors.NewConfigError(errors.Wrap(err, "reading preferences"))
	}
	data, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrap(err, "marshaling preferences")
	}
	_, err = w.Write(data)
	return err
}
