package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/pkg/fileutil"
)

// idLayout formats backup ids.
const idLayout = "20060102T150405"

// Manager creates, lists and restores platform file backups.
type Manager struct {
	rootDir   string
	retention int
	version   string
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetention sets the number of backups kept per platform. Values
// below 1 are ignored.
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

// WithVersion records the application version in new manifests.
func WithVersion(v string) Option {
	return func(m *Manager) {
		m.version = v
	}
}

// NewManager creates a Manager rooted at paths.BackupDir unless
// overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:   paths.BackupDir(),
		retention: DefaultRetention,
		version:   "dev",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the root backup directory.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Backup copies the file at path into a new backup for platform and prunes
// backups beyond the retention count. A missing file is not an error: the
// returned manifest is nil.
func (m *Manager) Backup(platform, path string) (*Manifest, error) {
	manifest, err := m.snapshot(platform, path)
	if err != nil || manifest == nil {
		return manifest, err
	}
	if err := m.Prune(platform, m.retention); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

func (m *Manager) snapshot(platform, path string) (*Manifest, error) {
	if err := validName(platform); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, errors.Mark(errors.Wrapf(err, "stat %s", path), errors.ErrIO)
	case !info.Mode().IsRegular():
		return nil, errors.Newf("%s is not a regular file", path)
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	created := m.now().UTC()
	id, dir, err := m.makeDir(platform, created)
	if err != nil {
		return nil, err
	}

	file := File{
		OriginalPath: path,
		Name:         filepath.Base(path),
		SHA256Hash:   hash(data),
		Size:         int64(len(data)),
		Mode:         info.Mode().Perm(),
	}
	if err := fileutil.AtomicWriteFile(filepath.Join(dir, file.Name), data, file.Mode); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Mark(errors.Wrap(err, "copying file"), errors.ErrIO)
	}

	manifest := &Manifest{
		Version:    ManifestVersion,
		CreatedAt:  created,
		Platform:   platform,
		File:       file,
		AppVersion: m.version,
		ID:         id,
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, manifestName), manifest); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Mark(errors.Wrap(err, "writing manifest"), errors.ErrIO)
	}
	return manifest, nil
}

// makeDir creates a fresh backup directory. Backups within the same second
// get a numeric suffix.
func (m *Manager) makeDir(platform string, t time.Time) (id, dir string, err error) {
	parent := filepath.Join(m.rootDir, platform)
	if err := paths.EnsureDir(parent, paths.DefaultDirPerm); err != nil {
		return "", "", errors.Mark(errors.Wrap(err, "creating backup directory"), errors.ErrIO)
	}

	base := t.Format(idLayout)
	for n := 0; ; n++ {
		id = base
		if n > 0 {
			id = base + "-" + strconv.Itoa(n)
		}
		dir = filepath.Join(parent, id)
		err := os.Mkdir(dir, paths.DefaultDirPerm)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", errors.Mark(errors.Wrap(err, "creating backup directory"), errors.ErrIO)
		}
	}
}

// Restore writes the backed up file back to its original location with its
// original permissions. The file being replaced is backed up first, so a
// restore can be undone; pruning happens only after the write.
func (m *Manager) Restore(platform, id string) (*Manifest, error) {
	manifest, err := m.Get(platform, id)
	if err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.rootDir, platform, id, manifest.File.Name))
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup %s", id)
	}
	if hash(data) != manifest.File.SHA256Hash {
		return nil, errors.Wrapf(ErrBackupCorrupted, "backup %s hash mismatch", id)
	}

	target := manifest.File.OriginalPath
	if _, err := m.snapshot(platform, target); err != nil {
		return nil, errors.Wrap(err, "backing up current file")
	}
	if err := paths.EnsureDir(filepath.Dir(target), paths.DefaultDirPerm); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "creating directory for %s", target), errors.ErrIO)
	}
	if err := fileutil.AtomicWriteFile(target, data, manifest.File.Mode); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "restoring %s", target), errors.ErrIO)
	}

	if err := m.Prune(platform, m.retention); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// Latest returns the most recent backup for platform.
func (m *Manager) Latest(platform string) (*Manifest, error) {
	manifests, err := m.List(platform)
	if err != nil {
		return nil, err
	}
	return &manifests[0], nil
}

// List returns the backups of platform, newest first. Directories without
// a readable manifest are skipped.
func (m *Manager) List(platform string) ([]Manifest, error) {
	if err := validName(platform); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(m.rootDir, platform))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Mark(errors.Wrap(err, "reading backup directory"), errors.ErrIO)
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(platform, entry.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Platforms returns the names of platforms that have backups, sorted.
func (m *Manager) Platforms() ([]string, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Mark(errors.Wrap(err, "reading backup directory"), errors.ErrIO)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Prune removes backups of platform beyond the newest keep.
func (m *Manager) Prune(platform string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(platform)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for _, old := range manifests[min(keep, len(manifests)):] {
		if err := os.RemoveAll(filepath.Join(m.rootDir, platform, old.ID)); err != nil {
			return errors.Mark(errors.Wrapf(err, "removing backup %s", old.ID), errors.ErrIO)
		}
	}
	return nil
}

// Get returns the manifest of one backup.
func (m *Manager) Get(platform, id string) (*Manifest, error) {
	if err := validName(platform); err != nil {
		return nil, err
	}
	if err := validName(id); err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.rootDir, platform, id, manifestName))
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s of %s", id, platform)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing manifest"), errors.ErrParse)
	}
	manifest.ID = id
	return &manifest, nil
}

// validName rejects names that are empty or not a single path element.
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
