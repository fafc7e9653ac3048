package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/cmd"
	"github.com/thoreinstein/mcpsel/internal/app"
	"github.com/thoreinstein/mcpsel/internal/config"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/logging"
	"github.com/thoreinstein/mcpsel/internal/notify"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/internal/watch"
)

// registrySuggestion accompanies every fatal registry error.
const registrySuggestion = "Fix or create the tool registry, then run: mcpsel doctor"

// workdir returns the directory relative paths resolve against.
func workdir() (string, error) {
	if workdirFlag != "" {
		return paths.Resolve(workdirFlag, ""), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "resolving working directory"), "pass --workdir")
	}
	return wd, nil
}

// startArgs renders the --database flag as a start-argument.
func startArgs() []string {
	if databaseFlag == "" {
		return nil
	}
	return []string{paths.DatabaseArgPrefix + databaseFlag}
}

func prefs() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// openApp builds and starts the coordinator. With needRegistry set, a
// registry that cannot be loaded is fatal and yields exit code 2;
// otherwise the app is returned and the registry stays unavailable.
// The caller must call closeApp.
func openApp(c *cobra.Command, needRegistry bool) (*app.App, error) {
	wd, err := workdir()
	if err != nil {
		return nil, err
	}
	p := prefs()

	a, err := app.New(app.Options{
		Cwd:          wd,
		Args:         startArgs(),
		SettingsFile: p.SettingsFile,
		RegistryFile: p.DatabaseFile,
		Interval:     p.Watch.Interval,
		Backend:      watch.Backend(p.Watch.Backend),
		Shell:        p.Shell,
		Logger:       logging.FromContext(c.Context()),

		BackupRetention: p.Backup.Retention,
		Version:         cmd.Version,
	})
	if err != nil {
		return nil, errors.NewSystemError(err, "check watch.backend in the preferences file")
	}

	if err := a.Start(c.Context()); err != nil {
		if !errors.Is(err, errors.ErrRegistryUnavailable) {
			_ = a.Close()
			return nil, errors.NewSystemError(err, "")
		}
		if needRegistry {
			_ = a.Close()
			return nil, registryError(err)
		}
	}
	return a, nil
}

// closeApp waits for batch commands and releases watchers.
func closeApp(a *app.App) {
	a.Wait()
	_ = a.Close()
}

// warnBatchErrors prints a warning to w for every failed post-save
// command until a is closed. closeApp flushes pending warnings.
func warnBatchErrors(a *app.App, w io.Writer) {
	a.Subscribe(func(ev notify.Event) {
		if ev.Kind == notify.BatchError {
			fmt.Fprintf(w, "%s %s: %s\n", yellow("warning:"), ev.Path, ev.Message)
		}
	})
}

func registryError(err error) error {
	return errors.NewSystemError(err, registrySuggestion)
}
