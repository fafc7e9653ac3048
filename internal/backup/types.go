package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetention is the number of backups kept per platform.
const DefaultRetention = 5

// manifestName is the manifest file inside a backup directory.
const manifestName = "manifest.json"

var (
	// ErrNoBackupsFound indicates no backups exist for the platform.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates the stored copy no longer matches its hash.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrInvalidName indicates a platform name or backup id that cannot be
	// used as a single path element.
	ErrInvalidName = errors.New("invalid name")
)

// Manifest describes one backup. It is stored as manifest.json in the
// backup directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Platform  string    `json:"platform"`
	File      File      `json:"file"`
	// AppVersion is the mcpsel version that created the backup.
	AppVersion string `json:"app_version"`

	// ID is the backup directory name, e.g. 20260123T100712. Populated
	// when loading, not stored.
	ID string `json:"-"`
}

// File is the backed up platform file.
type File struct {
	OriginalPath string      `json:"original_path"`
	Name         string      `json:"name"`
	SHA256Hash   string      `json:"sha256_hash"`
	Size         int64       `json:"size"`
	Mode         fs.FileMode `json:"mode"`
}
