// Package app wires the config store, notification bus and platform
// manager together and exposes the operations the presentation layer
// uses: get settings, get the registry, read and save a platform's config,
// and subscribe to change notifications.
package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/thoreinstein/mcpsel/internal/backup"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/notify"
	"github.com/thoreinstein/mcpsel/internal/platform"
	"github.com/thoreinstein/mcpsel/internal/settings"
	"github.com/thoreinstein/mcpsel/internal/store"
	"github.com/thoreinstein/mcpsel/internal/watch"
)

// Options configures an App.
type Options struct {
	// Cwd anchors relative paths. Required.
	Cwd string
	// Args are searched for --database=<path>.
	Args         []string
	SettingsFile string
	RegistryFile string
	Interval     time.Duration
	Backend      watch.Backend
	// Shell overrides the batch command shell.
	Shell string
	// BackupRetention is the number of backups kept per platform. Zero
	// disables backups.
	BackupRetention int
	// BackupDir defaults to paths.BackupDir.
	BackupDir string
	// Version is recorded in backup manifests.
	Version string
	Logger  *slog.Logger

	// Watcher replaces the backend-selected watcher. The App does not
	// close a watcher it did not create.
	Watcher watch.Watcher
	// Runner replaces the shell runner.
	Runner platform.Runner
}

// SaveResult reports the outcome of SavePlatformConfig.
type SaveResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
	// Err is the underlying error when Success is false.
	Err error `json:"-"`
}

// App coordinates the configuration subsystem.
type App struct {
	logger      *slog.Logger
	watcher     watch.Watcher
	ownsWatcher bool
	bus         *notify.Bus
	store       *store.Store
	platforms   *platform.Manager
	backups     *backup.Manager
}

// New builds an App. Nothing is loaded until Start.
func New(opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w, owns := opts.Watcher, false
	if w == nil {
		var err error
		w, err = watch.New(opts.Backend, opts.Logger.With("component", "watch"))
		if err != nil {
			return nil, err
		}
		owns = true
	}

	runner := opts.Runner
	if runner == nil {
		runner = &platform.ShellRunner{Shell: opts.Shell}
	}

	var backups *backup.Manager
	if opts.BackupRetention > 0 {
		backups = backup.NewManager(
			backup.WithBackupDir(opts.BackupDir),
			backup.WithRetention(opts.BackupRetention),
			backup.WithVersion(opts.Version),
		)
	}

	bus := notify.NewBus(opts.Logger.With("component", "notify"))
	st := store.New(store.Options{
		SettingsPath: opts.SettingsFile,
		RegistryFile: opts.RegistryFile,
		Args:         opts.Args,
		Cwd:          opts.Cwd,
		Interval:     opts.Interval,
		Watcher:      w,
		Publisher:    bus,
		Logger:       opts.Logger.With("component", "store"),
	})
	popts := platform.Options{
		Runner:    runner,
		Publisher: bus,
		Logger:    opts.Logger.With("component", "platform"),
	}
	if backups != nil {
		popts.Backups = backups
	}
	pm := platform.NewManager(st, popts)

	return &App{
		logger:      opts.Logger,
		watcher:     w,
		ownsWatcher: owns,
		bus:         bus,
		store:       st,
		platforms:   pm,
		backups:     backups,
	}, nil
}

// Start loads both documents and begins watching them. A registry that
// cannot be loaded is returned as an error marked
// errors.ErrRegistryUnavailable.
func (a *App) Start(ctx context.Context) error {
	return a.store.Start(ctx)
}

// GetSettings returns the current settings document.
func (a *App) GetSettings() *settings.Document {
	return a.store.Settings()
}

// GetRegistry returns the current tool registry, or an error marked
// errors.ErrRegistryUnavailable.
func (a *App) GetRegistry() (*mcp.Config, error) {
	return a.store.Registry()
}

// ReadPlatformConfig returns the saved document of a platform. It never
// fails; an empty name yields an empty document.
func (a *App) ReadPlatformConfig(name string) *mcp.Config {
	if strings.TrimSpace(name) == "" {
		a.logger.Debug("read requested without a platform, returning empty document")
		return mcp.NewConfig()
	}
	return a.platforms.Read(name)
}

// SavePlatformConfig writes doc for the named platform. A failing batch
// command does not affect the result; it is published as a batch.error
// event instead.
func (a *App) SavePlatformConfig(name string, doc *mcp.Config) SaveResult {
	if strings.TrimSpace(name) == "" {
		err := errors.Wrap(errors.ErrMissingName, "platform")
		return SaveResult{Error: err.Error(), Err: err}
	}
	path, err := a.platforms.Write(name, doc)
	if err != nil {
		a.logger.Error("save failed", "platform", name, "error", err)
		return SaveResult{Error: err.Error(), Err: err}
	}
	return SaveResult{Success: true, Path: path}
}

// Subscribe registers fn for change notifications. See notify.Bus.
func (a *App) Subscribe(fn func(notify.Event)) (cancel func()) {
	return a.bus.Subscribe(fn)
}

// Store exposes the underlying store for diagnostics.
func (a *App) Store() *store.Store { return a.store }

// Platforms exposes the platform manager for diagnostics.
func (a *App) Platforms() *platform.Manager { return a.platforms }

// Backups returns the backup manager, or nil when backups are disabled.
func (a *App) Backups() *backup.Manager { return a.backups }

// Wait blocks until detached batch commands have finished and their
// notifications have reached subscribers.
func (a *App) Wait() {
	a.platforms.Wait()
	a.bus.Sync()
}

// Close stops watching and delivering notifications. It does not wait for
// batch commands; call Wait first when they must complete.
func (a *App) Close() error {
	a.store.Close()
	a.bus.Close()
	if a.ownsWatcher {
		return a.watcher.Close()
	}
	return nil
}
