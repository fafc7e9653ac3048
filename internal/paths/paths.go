package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mcpsel"

// File names resolved against the working directory when nothing else is set.
const (
	DefaultSettingsFile = "settings.json"
	DefaultRegistryFile = "database.json"
	DefaultOutputFile   = "config.json"
)

// DatabaseArgPrefix is the start-argument that supplies a fallback registry path.
const DatabaseArgPrefix = "--database="

// DefaultDirPerm is the permission for directories created for generated files.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// AppConfigDir returns <ConfigHome>/mcpsel.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// AppDataDir returns <DataHome>/mcpsel.
func AppDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// BackupDir returns the root directory for platform file backups.
func BackupDir() string {
	return filepath.Join(AppDataDir(), "backups")
}

// Resolve makes p absolute against cwd and cleans it. An absolute p is
// only cleaned. No shell expansion happens: "~/x" is a directory named "~"
// under cwd.
func Resolve(p, cwd string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if cwd == "" {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
	}
	return filepath.Join(cwd, p)
}

// ArgValue returns the value of the first argument that starts with prefix.
func ArgValue(args []string, prefix string) (string, bool) {
	for _, arg := range args {
		if strings.HasPrefix(arg, prefix) {
			return strings.TrimPrefix(arg, prefix), true
		}
	}
	return "", false
}

// ResolveRegistryPath returns the absolute path of the tool registry.
//
// Priority:
//  1. declared, the database_path value of the settings document
//  2. the first start-argument of the form --database=<path>
//  3. defaultName inside cwd
//
// It never fails; when nothing is supplied the default is returned.
func ResolveRegistryPath(declared string, args []string, defaultName, cwd string) string {
	if declared != "" {
		return Resolve(declared, cwd)
	}
	if v, ok := ArgValue(args, DatabaseArgPrefix); ok && v != "" {
		return Resolve(v, cwd)
	}
	if defaultName == "" {
		defaultName = DefaultRegistryFile
	}
	return Resolve(defaultName, cwd)
}
