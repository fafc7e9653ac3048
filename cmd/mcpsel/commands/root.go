// Package commands implements the CLI commands for mcpsel.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/cmd"
	"github.com/thoreinstein/mcpsel/internal/config"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/logging"
)

// debugEnv raises verbosity when -v is absent: "1"/"true" for debug, "2"
// for trace.
const debugEnv = "MCPSEL_DEBUG"

var (
	// databaseFlag supplies the registry path as a --database= start-argument.
	databaseFlag string

	// workdirFlag overrides the directory relative paths resolve against.
	workdirFlag string

	verbosity int
	quiet     bool
	logFormat string
	logFile   string

	// cfg holds the preferences loaded by initConfig.
	cfg *config.Config

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&databaseFlag, "database", "",
		"tool registry path, used when settings declare no database_path")
	pf.StringVarP(&workdirFlag, "workdir", "C", "",
		"resolve settings, registry and output paths against this directory")
	pf.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	pf.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	pf.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpsel version {{.Version}}\n")

	// Silence errors and usage so Main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "mcpsel",
	Short: "Pick which MCP tools each platform gets",
	Long: `mcpsel keeps a registry of MCP tool servers (database.json) and writes
a per-platform selection of them to the locations declared in settings.json.

Both documents are watched while a session runs: edits are picked up
immediately, the output directory and registry path follow the settings,
and selections drop tools that leave the registry.`,
	Example: `  # List the tools in the registry
  mcpsel registry

  # Pick tools for a platform interactively
  mcpsel select claude

  # Replace a platform's selection
  mcpsel save claude github filesystem

  # Follow changes and keep a platform in sync
  mcpsel watch claude --save-on-change

  See Also: mcpsel doctor, mcpsel config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	logger, closeFn, err := logging.Setup(logging.Options{
		Verbosity: verbosity,
		Quiet:     quiet,
		DebugEnv:  os.Getenv(debugEnv),
		Format:    logFormat,
		Stderr:    cmd.ErrOrStderr(),
		File:      logFile,
	})
	switch {
	case errors.Is(err, logging.ErrConflictingFlags):
		return errors.NewUserError(err, "cannot use --quiet and --verbose together")
	case errors.Is(err, logging.ErrUnknownFormat):
		return errors.NewUserError(err, "use --log-format text or json")
	case err != nil:
		return errors.NewUserError(err, "failed to open log file")
	}
	_ = closeLog()
	closeLog = closeFn
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// closeLog releases the --log-file opened by setupLogging.
var closeLog = func() error { return nil }

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Main runs the CLI and returns the process exit code. Errors are printed
// to stderr with any suggestion attached.
func Main(stderr io.Writer) int {
	err := Execute()
	_ = closeLog()
	if err == nil {
		return 0
	}

	var exitErr *errors.ExitError
	switch {
	case !errors.As(err, &exitErr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		for _, hint := range errors.Hints(err) {
			fmt.Fprintf(stderr, "hint: %s\n", hint)
		}
	case exitErr.Err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", exitErr.Err)
	}
	if exitErr != nil && exitErr.Suggestion != "" {
		fmt.Fprintln(stderr, exitErr.Suggestion)
	}
	return errors.ExitCode(err)
}
