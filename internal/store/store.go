// Package store owns the in-memory settings document, tool registry and
// resolved output directory, and keeps them in sync with the files on disk.
//
// Loads are serialized: a watch-triggered reload never runs concurrently
// with another load. Readers take a snapshot under a read lock and never
// observe a half-applied update.
package store

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/notify"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/internal/settings"
	"github.com/thoreinstein/mcpsel/internal/watch"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

// State is the load state of a document.
type State int

const (
	// Unloaded means no load has succeeded yet.
	Unloaded State = iota
	// Loaded means the in-memory value reflects a successful load.
	Loaded
	// Unavailable means a registry load failed and the value was dropped.
	Unavailable
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Unavailable:
		return "unavailable"
	default:
		return "unloaded"
	}
}

// Options configures a Store.
type Options struct {
	// SettingsPath is the settings document location. Relative paths are
	// resolved against Cwd. Defaults to settings.json.
	SettingsPath string
	// RegistryFile is the registry file name used when neither settings nor
	// Args name one. Defaults to database.json.
	RegistryFile string
	// Args are the start arguments searched for --database=<path>.
	Args []string
	// Cwd anchors relative paths. Required.
	Cwd string
	// Interval is the watch poll interval. Defaults to watch.DefaultInterval.
	Interval time.Duration
	// Watcher observes both documents. Required.
	Watcher watch.Watcher
	// Publisher receives update and error notifications. Optional.
	Publisher notify.Publisher
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// ReadFile defaults to fileutil.ReadFileWithLimit.
	ReadFile func(path string) ([]byte, error)
}

// Store holds the current configuration documents.
type Store struct {
	settingsPath string
	registryFile string
	args         []string
	cwd          string
	interval     time.Duration
	watcher      watch.Watcher
	pub          notify.Publisher
	logger       *slog.Logger
	readFile     func(string) ([]byte, error)

	// loadMu serializes every load and watch registration change.
	loadMu          sync.Mutex
	started         bool
	watchedSettings bool
	watchedRegistry string

	mu            sync.RWMutex
	settings      *settings.Document
	settingsState State
	settingsErr   error
	settingsRaw   []byte
	outputDir     string
	registry      *mcp.Config
	registryState State
	registryErr   error
	registryRaw   []byte
	registryPath  string
}

// New returns an unstarted Store. Before the first settings load the output
// directory is Cwd and the registry path comes from Args or the default.
func New(opts Options) *Store {
	if opts.SettingsPath == "" {
		opts.SettingsPath = paths.DefaultSettingsFile
	}
	if opts.RegistryFile == "" {
		opts.RegistryFile = paths.DefaultRegistryFile
	}
	if opts.Interval <= 0 {
		opts.Interval = watch.DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ReadFile == nil {
		opts.ReadFile = fileutil.ReadFileWithLimit
	}

	return &Store{
		settingsPath: paths.Resolve(opts.SettingsPath, opts.Cwd),
		registryFile: opts.RegistryFile,
		args:         opts.Args,
		cwd:          opts.Cwd,
		interval:     opts.Interval,
		watcher:      opts.Watcher,
		pub:          opts.Publisher,
		logger:       opts.Logger,
		readFile:     opts.ReadFile,
		settings:     settings.Default(),
		outputDir:    paths.Resolve(".", opts.Cwd),
		registryPath: paths.ResolveRegistryPath("", opts.Args, opts.RegistryFile, opts.Cwd),
	}
}

// Start performs the initial loads and attaches watchers. A settings
// failure falls back to the default document. A registry failure is
// returned marked errors.ErrRegistryUnavailable; the caller should treat it
// as fatal.
func (s *Store) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if err := s.loadSettings(false); err != nil {
		s.logger.Warn("settings not loaded, using defaults", "path", s.settingsPath, "error", err)
	}

	if err := s.watcher.Watch(s.settingsPath, s.interval, s.onSettingsChange); err != nil {
		s.logger.Warn("cannot watch settings", "path", s.settingsPath, "error", err)
	} else {
		s.watchedSettings = true
	}

	s.started = true
	if err := s.loadRegistry(false); err != nil {
		return err
	}
	s.watchRegistry(s.RegistryPath())
	return nil
}

// Close detaches the store's watchers. The watcher itself is not closed.
func (s *Store) Close() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.watchedSettings {
		s.watcher.Unwatch(s.settingsPath)
		s.watchedSettings = false
	}
	if s.watchedRegistry != "" {
		s.watcher.Unwatch(s.watchedRegistry)
		s.watchedRegistry = ""
	}
	s.started = false
}

// ReloadSettings re-reads the settings document and publishes the result.
// When the derived registry path changes, the registry watch is moved and
// the registry is reloaded from the new path.
func (s *Store) ReloadSettings() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.loadSettings(true)
}

// ReloadRegistry re-reads the registry from the current registry path and
// publishes the result.
func (s *Store) ReloadRegistry() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.loadRegistry(true)
}

// Settings returns the current settings document. While no load has
// succeeded, each call retries the load silently first.
func (s *Store) Settings() *settings.Document {
	s.mu.RLock()
	doc, state := s.settings, s.settingsState
	s.mu.RUnlock()
	if state == Loaded {
		return doc
	}

	s.loadMu.Lock()
	s.logger.Debug("settings requested before a successful load, retrying", "path", s.settingsPath)
	_ = s.loadSettings(false)
	s.loadMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SettingsErr returns the error of the most recent settings load, or nil.
func (s *Store) SettingsErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingsErr
}

// Registry returns the current registry. It loads the registry silently if
// it was never loaded and fails with errors.ErrRegistryUnavailable when
// the last load failed.
func (s *Store) Registry() (*mcp.Config, error) {
	s.mu.RLock()
	state := s.registryState
	s.mu.RUnlock()

	if state == Unloaded {
		s.loadMu.Lock()
		s.mu.RLock()
		state = s.registryState
		s.mu.RUnlock()
		if state == Unloaded {
			_ = s.loadRegistry(false)
		}
		s.loadMu.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registryState != Loaded {
		return nil, unavailable(s.registryPath, s.registryErr)
	}
	return s.registry, nil
}

// RegistryState reports the registry load state.
func (s *Store) RegistryState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registryState
}

// OutputDir returns the resolved output directory.
func (s *Store) OutputDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputDir
}

// RegistryPath returns the absolute registry path currently in effect.
func (s *Store) RegistryPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registryPath
}

// SettingsPath returns the absolute settings path.
func (s *Store) SettingsPath() string {
	return s.settingsPath
}

// loadSettings must be called with loadMu held.
func (s *Store) loadSettings(publish bool) error {
	data, err := s.readFile(s.settingsPath)
	var doc *settings.Document
	if err == nil {
		doc, err = settings.Parse(data)
	}
	if err != nil {
		err = errors.Wrapf(err, "loading settings %s", s.settingsPath)
		fallback := settings.Default()
		registryPath := paths.ResolveRegistryPath(fallback.DatabasePath, s.args, s.registryFile, s.cwd)

		// Derived values follow the fallback document, not the last good one.
		s.mu.Lock()
		previousRegistry := s.registryPath
		s.settings = fallback
		s.settingsErr = err
		s.settingsRaw = nil
		s.outputDir = fallback.ResolveOutputDir(s.cwd)
		s.registryPath = registryPath
		s.mu.Unlock()

		s.logger.Debug("settings load failed", "path", s.settingsPath, "error", err)
		if publish {
			s.publish(notify.Event{Kind: notify.SettingsError, Message: err.Error(), Path: s.settingsPath})
		}
		s.cascade(previousRegistry, registryPath, publish)
		return err
	}

	outputDir := doc.ResolveOutputDir(s.cwd)
	registryPath := paths.ResolveRegistryPath(doc.DatabasePath, s.args, s.registryFile, s.cwd)

	s.mu.Lock()
	unchanged := s.settingsState == Loaded && s.settingsErr == nil && bytes.Equal(s.settingsRaw, data)
	previousRegistry := s.registryPath
	s.settings = doc
	s.settingsState = Loaded
	s.settingsErr = nil
	s.settingsRaw = data
	s.outputDir = outputDir
	s.registryPath = registryPath
	s.mu.Unlock()

	s.logger.Debug("settings loaded", "path", s.settingsPath, "platforms", len(doc.Platforms), "output_dir", outputDir)
	if publish && !unchanged {
		s.publish(notify.Event{Kind: notify.SettingsUpdated, Settings: doc, Path: s.settingsPath})
	}

	s.cascade(previousRegistry, registryPath, publish)
	return nil
}

// cascade reloads the registry from its new path after a settings load
// changed it. Before Start the initial registry load picks the path up.
func (s *Store) cascade(from, to string, publish bool) {
	if !s.started || from == to {
		return
	}
	s.logger.Info("registry path changed", "from", from, "to", to)
	s.swapRegistry(to, publish)
}

// swapRegistry moves the registry watch to path and reloads. The new path
// is watched even when the load fails so that fixing the file recovers.
// Must be called with loadMu held.
func (s *Store) swapRegistry(path string, publish bool) {
	if s.watchedRegistry != "" {
		s.watcher.Unwatch(s.watchedRegistry)
		s.watchedRegistry = ""
	}
	if err := s.loadRegistry(publish); err != nil {
		s.logger.Warn("registry reload after settings change failed", "path", path, "error", err)
	}
	s.watchRegistry(path)
}

// watchRegistry must be called with loadMu held.
func (s *Store) watchRegistry(path string) {
	onChange := func(c watch.Change) { s.onRegistryChange(path, c) }
	if err := s.watcher.Watch(path, s.interval, onChange); err != nil {
		s.logger.Warn("cannot watch registry", "path", path, "error", err)
		return
	}
	s.watchedRegistry = path
}

// loadRegistry must be called with loadMu held.
func (s *Store) loadRegistry(publish bool) error {
	path := s.RegistryPath()

	data, err := s.readFile(path)
	var reg *mcp.Config
	if err == nil {
		reg, err = mcp.ParseRegistry(data)
	}
	if err != nil {
		s.mu.Lock()
		s.registry = nil
		s.registryState = Unavailable
		s.registryErr = err
		s.registryRaw = nil
		s.mu.Unlock()

		s.logger.Debug("registry load failed", "path", path, "error", err)
		if publish {
			s.publish(notify.Event{Kind: notify.RegistryError, Message: err.Error(), Path: path})
		}
		return unavailable(path, err)
	}

	s.mu.Lock()
	unchanged := s.registryState == Loaded && bytes.Equal(s.registryRaw, data)
	s.registry = reg
	s.registryState = Loaded
	s.registryErr = nil
	s.registryRaw = data
	s.mu.Unlock()

	s.logger.Debug("registry loaded", "path", path, "servers", reg.Len())
	if publish && !unchanged {
		s.publish(notify.Event{Kind: notify.RegistryUpdated, Registry: reg, Path: path})
	}
	return nil
}

func (s *Store) onSettingsChange(c watch.Change) {
	s.logger.Info("settings changed on disk", "path", c.Path, "removed", c.Removed())
	_ = s.ReloadSettings()
}

func (s *Store) onRegistryChange(path string, c watch.Change) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if path != s.watchedRegistry {
		s.logger.Debug("ignoring change for stale registry path", "path", path)
		return
	}
	s.logger.Info("registry changed on disk", "path", c.Path, "removed", c.Removed())
	_ = s.loadRegistry(true)
}

func (s *Store) publish(ev notify.Event) {
	if s.pub != nil {
		s.pub.Publish(ev)
	}
}

func unavailable(path string, cause error) error {
	if cause == nil {
		return errors.Wrapf(errors.ErrRegistryUnavailable, "registry %s", path)
	}
	return errors.Mark(errors.Wrapf(cause, "registry %s", path), errors.ErrRegistryUnavailable)
}
