package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpsel/internal/app"
	"github.com/thoreinstein/mcpsel/internal/cli"
	"github.com/thoreinstein/mcpsel/internal/logging"
	"github.com/thoreinstein/mcpsel/internal/notify"
)

var watchSaveOnChange bool

func init() {
	watchCmd.Flags().BoolVar(&watchSaveOnChange, "save-on-change", false,
		"re-save the platform whenever the registry changes")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [platform]",
	Short: "Follow settings and registry changes",
	Long: `Watch settings.json and the registry and print every change until
interrupted.

The platform's selection is kept consistent with the registry: tools that
disappear are dropped. When settings remove the platform, watching moves
to the first declared platform. With --save-on-change the reconciled
selection is written again after each registry update.`,
	Example: `  mcpsel watch
  mcpsel watch claude --save-on-change`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer closeApp(a)

	reg, err := a.GetRegistry()
	if err != nil {
		return registryError(err)
	}

	doc := a.GetSettings()
	name := ""
	if len(args) == 1 {
		name = args[0]
	} else if names := doc.Names(); len(names) > 0 {
		name = names[0]
	}

	var sel *cli.Selection
	if name != "" {
		sel = cli.FromConfig(a.ReadPlatformConfig(name))
	}
	w := &watcher{
		out:     cmd.OutOrStdout(),
		app:     a,
		session: cli.NewSession(name, doc, reg, sel),
		save:    watchSaveOnChange,
	}

	cancel := a.Subscribe(w.handle)
	defer cancel()

	w.mu.Lock()
	fmt.Fprintf(w.out, "Watching %s and %s\n", a.Store().SettingsPath(), a.Store().RegistryPath())
	if name != "" {
		fmt.Fprintf(w.out, "Platform %s: %d tool(s) selected\n", bold(name), len(w.session.Selected()))
	}
	w.mu.Unlock()

	<-ctx.Done()
	logging.FromContext(cmd.Context()).Debug("watch stopped", "reason", context.Cause(ctx))
	return nil
}

// watcher prints events and reconciles one platform's selection.
type watcher struct {
	mu      sync.Mutex
	out     io.Writer
	app     *app.App
	session *cli.Session
	save    bool
}

func (w *watcher) handle(ev notify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := w.session.Apply(ev)
	stamp := gray(ev.Time.Format("15:04:05"))

	switch ev.Kind {
	case notify.SettingsUpdated:
		fmt.Fprintf(w.out, "%s %s %d platform(s)\n", stamp, cyan(string(ev.Kind)), len(ev.Settings.Platforms))
	case notify.RegistryUpdated:
		fmt.Fprintf(w.out, "%s %s %d tool(s)\n", stamp, cyan(string(ev.Kind)), ev.Registry.Len())
	case notify.SettingsError, notify.RegistryError:
		fmt.Fprintf(w.out, "%s %s %s\n", stamp, red(string(ev.Kind)), ev.Message)
	case notify.BatchError:
		fmt.Fprintf(w.out, "%s %s %s: %s\n", stamp, yellow(string(ev.Kind)), ev.Path, ev.Message)
	}

	if len(ch.Dropped) > 0 {
		fmt.Fprintf(w.out, "  dropped from %s: %s\n", w.session.Platform(), strings.Join(ch.Dropped, ", "))
	}
	if ch.PlatformChanged {
		next := w.session.Platform()
		if next == "" {
			fmt.Fprintf(w.out, "  platform %s removed; no platforms left\n", ch.Previous)
		} else {
			w.session.SetPlatform(next, cli.FromConfig(w.app.ReadPlatformConfig(next)))
			fmt.Fprintf(w.out, "  platform %s removed; now watching %s\n", ch.Previous, bold(next))
		}
	}

	if w.save && ev.Kind == notify.RegistryUpdated {
		w.resave()
	}
}

func (w *watcher) resave() {
	name := w.session.Platform()
	reg, ok := w.session.Registry()
	if name == "" || !ok {
		return
	}
	doc := cli.NewSelection(w.session.Selected()...).Build(reg)
	res := w.app.SavePlatformConfig(name, doc)
	if !res.Success {
		fmt.Fprintf(w.out, "  %s saving %s: %s\n", red("error"), name, res.Error)
		return
	}
	fmt.Fprintf(w.out, "  saved %d tool(s) to %s\n", doc.Len(), res.Path)
}
