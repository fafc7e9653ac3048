package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpsel/internal/config"
	"github.com/thoreinstein/mcpsel/internal/doctor"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/logging"
	"github.com/thoreinstein/mcpsel/internal/mcp"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	workspace(t)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel))
			if tt.wantLevel > logging.LevelTrace {
				assert.False(t, logger.Enabled(t.Context(), tt.wantLevel-4))
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	workspace(t)

	tests := []struct {
		envVal    string
		wantLevel slog.Level
	}{
		{"1", slog.LevelDebug},
		{"true", slog.LevelDebug},
		{"2", logging.LevelTrace},
		{"0", slog.LevelWarn},
		{"foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(debugEnv+"="+tt.envVal, func(t *testing.T) {
			verbosity = 0
			t.Setenv(debugEnv, tt.envVal)

			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel))
			assert.False(t, logger.Enabled(t.Context(), tt.wantLevel-4))
		})
	}
}

func TestSetupLogging_Conflicts(t *testing.T) {
	workspace(t)

	quiet, verbosity = true, 1
	err := setupLogging(rootCmd)
	assert.Equal(t, errors.ExitUser, exitCode(err))

	quiet, verbosity = false, 0
	logFormat = "xml"
	err = setupLogging(rootCmd)
	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestSettings(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "settings", "--format", "yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "name: claude")
	assert.Contains(t, out, "platform_dir: cur")
}

func TestSettings_InvalidFallsBack(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "settings.json"), "{ not json")

	out, stderr, err := run(t, "settings")

	require.NoError(t, err)
	assert.JSONEq(t, `{"platforms": []}`, out)
	assert.Contains(t, stderr, "settings could not be loaded")
}

func TestRegistry_Table(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "registry")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "fs"))
	assert.True(t, strings.HasPrefix(lines[2], "github"))
	assert.Contains(t, lines[2], "GITHUB_TOKEN")
}

func TestRegistry_MasksSecrets(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "registry", "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "ghp_abcdefghijklmnop1234")
	assert.Contains(t, out, "****1234")

	registryFormat = "table"
	out, _, err = run(t, "registry", "--format", "json", "--show-secrets")
	require.NoError(t, err)
	assert.Contains(t, out, "ghp_abcdefghijklmnop1234")
}

func TestRegistry_DatabaseFlag(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "other", "db.json"), `{"mcpServers": {"only": {"command": "x"}}}`)

	out, _, err := run(t, "--database", "other/db.json", "registry")

	require.NoError(t, err)
	assert.Contains(t, out, "only")
	assert.NotContains(t, out, "github")
}

func TestRegistry_UnavailableIsFatal(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "database.json")))

	_, _, err := run(t, "registry")

	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, exitCode(err))
	assert.True(t, errors.Is(err, errors.ErrRegistryUnavailable))
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, registrySuggestion, exitErr.Suggestion)
}

func TestRegistry_UnknownFormat(t *testing.T) {
	workspace(t)

	_, _, err := run(t, "registry", "--format", "xml")

	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestSave(t *testing.T) {
	dir := workspace(t)

	out, _, err := run(t, "save", "cursor", "github")

	require.NoError(t, err)
	path := filepath.Join(dir, "cur", "mcp.json")
	assert.Contains(t, out, "Saved 1 tool(s) for cursor to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := mcp.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"github"}, doc.IDs())
	assert.Equal(t, "ghp_abcdefghijklmnop1234", doc.MCPServers["github"].Env["GITHUB_TOKEN"])
}

func TestSave_All(t *testing.T) {
	dir := workspace(t)

	_, _, err := run(t, "save", "claude", "--all")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "claude", "config.json"))
	require.NoError(t, err)
	doc, err := mcp.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"fs", "github"}, doc.IDs())
}

func TestSave_UnknownTool(t *testing.T) {
	dir := workspace(t)

	_, _, err := run(t, "save", "claude", "github", "nope")

	assert.Equal(t, errors.ExitUser, exitCode(err))
	assert.Contains(t, err.Error(), "nope")
	assert.NoFileExists(t, filepath.Join(dir, "claude", "config.json"))
}

func TestSave_WriteFailureExitsTwo(t *testing.T) {
	dir := workspace(t)
	// a file where the platform directory should be
	write(t, filepath.Join(dir, "claude"), "blocker")

	_, _, err := run(t, "save", "claude", "fs")

	assert.Equal(t, errors.ExitSystem, exitCode(err))
	assert.True(t, errors.Is(err, errors.ErrIO))
}

func TestSave_BatchCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("batch commands run through sh")
	}
	dir := workspace(t)
	write(t, filepath.Join(dir, "settings.json"), `{"platforms": [
		{"name": "ok", "batch": "cp {{config_file_path}} {{config_file_path}}.bak"},
		{"name": "bad", "batch": "exit 3"}
	]}`)

	_, _, err := run(t, "save", "ok", "fs")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "ok", "config.json.bak"))

	_, stderr, err := run(t, "save", "bad", "fs")
	require.NoError(t, err, "a failing batch command does not fail the save")
	assert.Contains(t, stderr, "batch command failed")
	assert.FileExists(t, filepath.Join(dir, "bad", "config.json"))
}

func TestSave_BatchFailureWarnsWhenQuiet(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("batch commands run through sh")
	}
	dir := workspace(t)
	write(t, filepath.Join(dir, "settings.json"), `{"platforms": [{"name": "bad", "batch": "exit 3"}]}`)
	path := filepath.Join(dir, "bad", "config.json")

	_, stderr, err := run(t, "-q", "save", "bad", "fs")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: "+path+": batch command for bad")
	assert.Contains(t, stderr, "exit status 3")

	_, stderr, err = run(t, "-q", "toggle", "bad", "github")
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning: "+path)
}

func TestBackup_ListAndRestore(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "cur", "mcp.json")

	out, _, err := run(t, "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No backups available.")

	_, _, err = run(t, "save", "cursor", "github")
	require.NoError(t, err)
	_, _, err = run(t, "save", "cursor", "fs")
	require.NoError(t, err)

	out, _, err = run(t, "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cursor")
	assert.Contains(t, out, path)

	out, _, err = run(t, "backup", "restore", "cursor")
	require.NoError(t, err)
	assert.Contains(t, out, "Using most recent backup")
	assert.Contains(t, out, "Restored cursor")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := mcp.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"github"}, doc.IDs())

	out, _, err = run(t, "backup", "list", "cursor", "--json")
	require.NoError(t, err)
	var entries []backupEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2, "restore keeps the replaced file")
}

func TestBackup_RestoreUnknown(t *testing.T) {
	workspace(t)

	_, _, err := run(t, "backup", "restore", "claude")
	assert.Equal(t, errors.ExitUser, exitCode(err))

	_, _, err = run(t, "backup", "restore", "claude", "20200101T000000")
	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestToggle(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "claude", "config.json"),
		`{"mcpServers": {"fs": {"command": "npx"}, "retired": {"command": "old"}}}`)

	out, _, err := run(t, "toggle", "claude", "github", "fs")

	require.NoError(t, err)
	assert.Contains(t, out, "+ github")
	assert.Contains(t, out, "- fs")

	data, err := os.ReadFile(filepath.Join(dir, "claude", "config.json"))
	require.NoError(t, err)
	doc, err := mcp.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"github"}, doc.IDs(), "stale ids are dropped on save")
}

func TestToggle_UnknownTool(t *testing.T) {
	workspace(t)

	_, _, err := run(t, "toggle", "claude", "nope")

	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestShow(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "claude", "config.json"),
		`{"mcpServers": {"github": {"command": "gh-mcp"}, "retired": {"command": "old"}}}`)

	out, _, err := run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "present")
	assert.Contains(t, out, "missing")

	showFormat = "table"
	out, _, err = run(t, "show", "claude")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 tool(s) selected")
	assert.Contains(t, out, "missing from the registry: retired")
}

func TestShow_RegistryUnavailable(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "database.json")))
	write(t, filepath.Join(dir, "claude", "config.json"), `{"mcpServers": {"github": {"command": "gh-mcp"}}}`)

	out, _, err := run(t, "show", "claude")

	require.NoError(t, err)
	assert.Contains(t, out, "registry unavailable")
	assert.Contains(t, out, "github")
}

func TestSelect_Prompt(t *testing.T) {
	dir := workspace(t)
	// platform 1 (claude), then tools 1 and 2 (fs, github)
	rootCmd.SetIn(strings.NewReader("1\n1,2\n"))

	out, _, err := run(t, "select")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 tool(s) for claude")
	data, err := os.ReadFile(filepath.Join(dir, "claude", "config.json"))
	require.NoError(t, err)
	doc, err := mcp.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"fs", "github"}, doc.IDs())
}

func TestSelect_Cancelled(t *testing.T) {
	dir := workspace(t)

	out, _, err := run(t, "select", "claude")

	require.NoError(t, err)
	assert.Contains(t, out, "Selection cancelled.")
	assert.NoFileExists(t, filepath.Join(dir, "claude", "config.json"))
}

func TestDoctor_JSON(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "doctor", "--json")

	require.NoError(t, err)
	var report doctor.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 0, report.Summary.Errors)
	assert.Equal(t, 0, report.Summary.Warnings)
	assert.Len(t, report.Results, 8)
}

func TestDoctor_MissingRegistry(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "database.json")))

	out, _, err := run(t, "doctor")

	assert.Equal(t, errors.ExitSystem, exitCode(err))
	assert.Contains(t, out, "registry-syntax")
	assert.Contains(t, out, "registry file not found")
}

func TestDoctor_StaleSelectionWarns(t *testing.T) {
	dir := workspace(t)
	write(t, filepath.Join(dir, "claude", "config.json"), `{"mcpServers": {"retired": {"command": "old"}}}`)

	out, _, err := run(t, "doctor")

	assert.Equal(t, errors.ExitUser, exitCode(err))
	assert.Contains(t, out, "stale-selection")
}

func TestConfig(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults")
	assert.Contains(t, out, "database_file: database.json")

	out, _, err = run(t, "config", "get", "watch.backend")
	require.NoError(t, err)
	assert.Equal(t, "poll\n", out)

	_, _, err = run(t, "config", "get", "nope")
	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestConfig_Set(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "config", "set", "watch.interval", "250ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Set watch.interval = 250ms")

	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "mcpsel", "mcpsel.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 250ms")

	_, _, err = run(t, "config", "set", "watch.backend", "carrier-pigeon")
	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestConfig_SetKeepsEveryKey(t *testing.T) {
	workspace(t)
	prefs := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "mcpsel", "mcpsel.yaml")

	_, _, err := run(t, "config", "set", "backup.retention", "0")
	require.NoError(t, err)
	_, _, err = run(t, "config", "set", "watch.backend", "native")
	require.NoError(t, err)

	data, err := os.ReadFile(prefs)
	require.NoError(t, err)
	var written map[string]any
	require.NoError(t, yaml.Unmarshal(data, &written))
	for _, key := range config.Keys() {
		section, field, nested := strings.Cut(key, ".")
		if !nested {
			assert.Contains(t, written, key)
			continue
		}
		require.IsType(t, map[string]any{}, written[section], key)
		assert.Contains(t, written[section], field, key)
	}

	// A fresh process reads both values back from the file.
	viper.Reset()
	out, _, err := run(t, "config", "get", "backup.retention")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
	out, _, err = run(t, "config", "get", "watch.backend")
	require.NoError(t, err)
	assert.Equal(t, "native\n", out)
}

func TestEdit(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "database.json")))

	var opened string
	orig := openEditor
	t.Cleanup(func() { openEditor = orig })
	openEditor = func(_ *cobra.Command, path string) error {
		opened = path
		return nil
	}

	out, _, err := run(t, "edit", "registry")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "database.json"), opened)
	assert.Contains(t, out, "is valid")
	data, err := os.ReadFile(opened)
	require.NoError(t, err)
	assert.Equal(t, registrySkeleton, string(data))
	assert.Contains(t, out, "registry has no servers")
}

func TestEdit_InvalidAfterEditing(t *testing.T) {
	dir := workspace(t)

	orig := openEditor
	t.Cleanup(func() { openEditor = orig })
	openEditor = func(_ *cobra.Command, path string) error {
		return os.WriteFile(path, []byte(`{"platforms": [{"name": ""}]}`), 0o644)
	}

	_, _, err := run(t, "edit", "settings")

	assert.Equal(t, errors.ExitUser, exitCode(err))
	assert.True(t, errors.Is(err, errors.ErrParse))
	assert.FileExists(t, filepath.Join(dir, "settings.json"))
}

func TestWatch_ReconcilesAndSaves(t *testing.T) {
	dir := workspace(t)
	t.Setenv("MCPSEL_WATCH_INTERVAL", "20ms")
	write(t, filepath.Join(dir, "claude", "config.json"),
		`{"mcpServers": {"fs": {"command": "npx"}, "github": {"command": "gh-mcp"}}}`)

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		_, _, err := runContext(t, ctx, out, "watch", "claude", "--save-on-change")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "2 tool(s) selected")
	}, 5*time.Second, 10*time.Millisecond)

	// mtime granularity can hide a rewrite within the same tick
	time.Sleep(50 * time.Millisecond)
	write(t, filepath.Join(dir, "database.json"), `{"mcpServers": {"fs": {"command": "npx"}}}`)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "saved 1 tool(s)")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	text := out.String()
	assert.Contains(t, text, "registry.updated 1 tool(s)")
	assert.Contains(t, text, "dropped from claude: github")

	data, err := os.ReadFile(filepath.Join(dir, "claude", "config.json"))
	require.NoError(t, err)
	doc, err := mcp.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"fs"}, doc.IDs())
}

func TestGenDoc(t *testing.T) {
	workspace(t)
	out := t.TempDir()

	_, _, err := run(t, "gen-doc", "--dir", out)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(out, "mcpsel_backup_list.md"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\ntitle: \"mcpsel backup list\""))

	_, _, err = run(t, "gen-doc", "--dir", out, "--format", "man")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "mcpsel-save.1"))

	_, _, err = run(t, "gen-doc")
	assert.Equal(t, errors.ExitUser, exitCode(err))
}

func TestVersion(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "version")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mcpsel version "))
	assert.Contains(t, out, "go:")

	out, _, err = run(t, "version", "--json")
	require.NoError(t, err)
	var b map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.NotEmpty(t, b["version"])
	assert.NotEmpty(t, b["go_version"])
}

func TestMain_ExitCodes(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "database.json")))

	var stderr bytes.Buffer
	rootCmd.SetArgs([]string{"registry"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	code := Main(&stderr)

	assert.Equal(t, errors.ExitSystem, code)
	assert.Contains(t, stderr.String(), "Error: ")
	assert.Contains(t, stderr.String(), registrySuggestion)
}
