package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpsel/internal/mcp"
	"github.com/thoreinstein/mcpsel/internal/platform"
	"github.com/thoreinstein/mcpsel/internal/settings"
)

type fakeSource struct {
	settingsPath string
	registryPath string
	outputDir    string
	doc          *settings.Document
	reg          *mcp.Config
	regErr       error
}

func (f *fakeSource) SettingsPath() string { return f.settingsPath }
func (f *fakeSource) RegistryPath() string { return f.registryPath }
func (f *fakeSource) OutputDir() string    { return f.outputDir }

func (f *fakeSource) Settings() *settings.Document {
	if f.doc == nil {
		return settings.Default()
	}
	return f.doc
}

func (f *fakeSource) Registry() (*mcp.Config, error) {
	return f.reg, f.regErr
}

type fakePlatforms []platform.Status

func (f fakePlatforms) StatusAll() []platform.Status { return f }

// newSource returns a source rooted in a temp dir with nothing on disk.
func newSource(t *testing.T) *fakeSource {
	t.Helper()
	dir := t.TempDir()
	return &fakeSource{
		settingsPath: filepath.Join(dir, "settings.json"),
		registryPath: filepath.Join(dir, "database.json"),
		outputDir:    dir,
	}
}

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func registry(ids ...string) *mcp.Config {
	cfg := mcp.NewConfig()
	for _, id := range ids {
		cfg.Set(id, &mcp.Server{Command: id})
	}
	return cfg
}
