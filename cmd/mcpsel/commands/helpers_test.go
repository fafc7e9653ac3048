package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

const testSettings = `{
  // two platforms
  "platforms": [
    {"name": "claude"},
    {"name": "cursor", "platform_dir": "cur", "output_filename": "mcp.json"}
  ]
}`

const testRegistry = `{
  "mcpServers": {
    "github": {"command": "gh-mcp", "env": {"GITHUB_TOKEN": "ghp_abcdefghijklmnop1234"}},
    "fs": {"command": "npx", "args": ["-y", "server-filesystem", "/tmp"]}
  }
}`

// syncBuffer is a bytes.Buffer safe for the watch subscriber goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// workspace creates a directory holding settings.json and database.json,
// isolates viper and XDG from the real environment and resets flag state.
func workspace(t *testing.T) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(xdgHome, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(xdgHome, "data"))
	t.Setenv(debugEnv, "")
	xdg.Reload()
	t.Chdir(dir)

	write(t, filepath.Join(dir, "settings.json"), testSettings)
	write(t, filepath.Join(dir, "database.json"), testRegistry)

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	resetFlags()
	t.Cleanup(resetFlags)
	return dir
}

func resetFlags() {
	databaseFlag, workdirFlag = "", ""
	verbosity, quiet = 0, false
	logFormat, logFile = "text", ""
	cfg, configLoadErr = nil, nil
	settingsFormat = "json"
	registryFormat, registryShowSecrets = "table", false
	showFormat, showShowSecrets = "table", false
	saveAll = false
	watchSaveOnChange = false
	doctorJSON, doctorVerbose, doctorFix = false, false, false
	backupListJSON = false
	genDocDir, genDocFormat = "", "markdown"
	versionJSON = false
	rootCmd.SetIn(strings.NewReader(""))
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run executes the root command and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runContext(t, t.Context(), nil, args...)
}

func runContext(t *testing.T, ctx context.Context, out *syncBuffer, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if out != nil {
		rootCmd.SetOut(out)
	} else {
		rootCmd.SetOut(&stdout)
	}
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	return errors.ExitCode(err)
}
