package platform

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/thoreinstein/mcpsel/internal/backup"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/notify"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/internal/settings"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

// Source supplies the settings the manager resolves paths against.
type Source interface {
	Settings() *settings.Document
	OutputDir() string
}

// Options configures a Manager.
type Options struct {
	// Runner executes batch commands. Defaults to a ShellRunner.
	Runner Runner
	// Publisher receives batch.error events. Optional.
	Publisher notify.Publisher
	// Backups snapshots a platform file before it is overwritten. Optional.
	Backups Backuper
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Backuper keeps a copy of an existing platform file. It is satisfied by
// *backup.Manager.
type Backuper interface {
	Backup(platform, path string) (*backup.Manifest, error)
}

// Manager reads and writes per-platform config files.
type Manager struct {
	src     Source
	runner  Runner
	pub     notify.Publisher
	backups Backuper
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewManager creates a Manager that resolves paths through src.
func NewManager(src Source, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Runner == nil {
		opts.Runner = &ShellRunner{}
	}
	return &Manager{
		src:     src,
		runner:  opts.Runner,
		pub:     opts.Publisher,
		backups: opts.Backups,
		logger:  opts.Logger,
	}
}

// Path returns the absolute config file path for the named platform. A
// name without a settings entry uses the default directory and file name.
func (m *Manager) Path(name string) string {
	p, _ := m.src.Settings().Platform(name)
	return m.path(p)
}

func (m *Manager) path(p settings.Platform) string {
	return filepath.Join(m.src.OutputDir(), p.Dir(), p.Filename())
}

// Read returns the saved document for the named platform, or an empty
// document when the file is missing, unreadable or malformed.
func (m *Manager) Read(name string) *mcp.Config {
	path := m.Path(name)
	doc, err := load(path)
	switch {
	case err == nil:
		return doc
	case errors.Is(err, errors.ErrNotFound):
		m.logger.Debug("no saved config, using empty document", "platform", name, "path", path)
	default:
		m.logger.Warn("cannot use saved config, using empty document", "platform", name, "path", path, "error", err)
	}
	return mcp.NewConfig()
}

// Write saves doc for the named platform and returns the written path.
// Errors are marked errors.ErrIO. When the platform declares a batch
// command it is started after the write and runs detached.
func (m *Manager) Write(name string, doc *mcp.Config) (string, error) {
	if doc == nil {
		doc = mcp.NewConfig()
	}
	p, _ := m.src.Settings().Platform(name)
	path := m.path(p)

	if err := paths.EnsureDir(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "creating directory for %s", name), errors.ErrIO)
	}
	m.backup(name, path)
	if err := fileutil.AtomicWriteJSON(path, doc); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "writing config for %s", name), errors.ErrIO)
	}
	m.logger.Info("saved platform config", "platform", name, "path", path, "servers", doc.Len())

	if command := p.Command(path); command != "" {
		m.runDetached(name, path, command)
	}
	return path, nil
}

// backup snapshots the current file. A failed backup is logged and does
// not prevent the write.
func (m *Manager) backup(name, path string) {
	if m.backups == nil {
		return
	}
	manifest, err := m.backups.Backup(name, path)
	switch {
	case err != nil:
		m.logger.Warn("backup failed", "platform", name, "path", path, "error", err)
	case manifest != nil:
		m.logger.Debug("backed up platform config", "platform", name, "backup", manifest.ID)
	}
}

// Wait blocks until every batch command started by Write has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runDetached(name, path, command string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.logger.Info("running batch command", "platform", name, "command", command)
		if err := m.runner.Run(context.Background(), command); err != nil {
			err = errors.Mark(errors.Wrapf(err, "batch command for %s", name), errors.ErrSideEffect)
			m.logger.Warn("batch command failed", "platform", name, "error", err)
			if m.pub != nil {
				m.pub.Publish(notify.Event{Kind: notify.BatchError, Message: err.Error(), Path: path})
			}
			return
		}
		m.logger.Debug("batch command finished", "platform", name)
	}()
}

// load reads and decodes a per-platform file. It never strips comments.
func load(path string) (*mcp.Config, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, err
	}
	return mcp.Parse(data)
}
