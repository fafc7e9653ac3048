package doctor

import (
	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/platform"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

// Source exposes the resolved locations and current snapshots. It is
// satisfied by *store.Store.
type Source interface {
	SettingsPath() string
	Settings() *settings.Document
	RegistryPath() string
	Registry() (*mcp.Config, error)
	OutputDir() string
}

// Platforms reports the state of every generated platform file. It is
// satisfied by *platform.Manager.
type Platforms interface {
	StatusAll() []platform.Status
}

// Defaults returns the standard check set in report order.
func Defaults(src Source, plats Platforms, args []string) []Check {
	return []Check{
		NewSettingsSyntaxCheck(src),
		NewRegistryPathCheck(src, args),
		NewRegistrySyntaxCheck(src),
		NewRegistryEntriesCheck(src),
		NewOutputDirCheck(src),
		NewPlatformConfigCheck(plats),
		NewStaleSelectionCheck(src, plats),
		NewPathPermissionCheck(src, plats),
	}
}
