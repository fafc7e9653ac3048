package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/watch"
)

// isolate resets viper and moves the working directory and XDG config home
// to empty temp dirs so no real preferences file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	xdg.Reload()
	t.Chdir(dir)
	return dir
}

func TestInit_Defaults(t *testing.T) {
	isolate(t)
	Init()

	assert.Equal(t, 1, viper.GetInt("version"))
	assert.Equal(t, "settings.json", viper.GetString("settings_file"))
	assert.Equal(t, "database.json", viper.GetString("database_file"))
	assert.Equal(t, time.Second, viper.GetDuration("watch.interval"))
	assert.Equal(t, "poll", viper.GetString("watch.backend"))
	assert.Equal(t, 5, viper.GetInt("backup.retention"))
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, Used())
}

func TestLoad_WithConfigFile(t *testing.T) {
	dir := isolate(t)
	Init()

	configPath := filepath.Join(dir, "mcpsel.yaml")
	content := "settings_file: conf/settings.json\nwatch:\n  interval: 250ms\n  backend: auto\nshell: bash\nbackup:\n  retention: 0\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "conf/settings.json", cfg.SettingsFile)
	assert.Equal(t, "database.json", cfg.DatabaseFile)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Interval)
	assert.Equal(t, "auto", cfg.Watch.Backend)
	assert.Equal(t, "bash", cfg.Shell)
	assert.Equal(t, 0, cfg.Backup.Retention)
	assert.Equal(t, configPath, Used())
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("MCPSEL_WATCH_BACKEND", "native")
	t.Setenv("MCPSEL_DATABASE_FILE", "tools.json")
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "native", cfg.Watch.Backend)
	assert.Equal(t, "tools.json", cfg.DatabaseFile)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	_, err := Load("/non/existent/path/mcpsel.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid version",
			content: "version: 0\n",
			wantErr: "version: must be >= 1",
		},
		{
			name:    "unknown backend",
			content: "watch:\n  backend: inotify\n",
			wantErr: "unknown watch backend",
		},
		{
			name:    "non-positive interval",
			content: "watch:\n  interval: 0s\n",
			wantErr: "watch.interval: must be positive",
		},
		{
			name:    "negative retention",
			content: "backup:\n  retention: -1\n",
			wantErr: "backup.retention: must not be negative",
		},
		{
			name:    "directory as settings file",
			content: "settings_file: conf/\n",
			wantErr: "settings_file: invalid path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			Init()

			configPath := filepath.Join(dir, "custom.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o600))

			_, err := Load(configPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validating config")
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	Init()

	configPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("watch: [\n"), 0o600))

	_, err := Load(configPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
}

func TestValidate_Nil(t *testing.T) {
	assert.Len(t, Validate(nil), 1)
}

func TestValidate_Default(t *testing.T) {
	assert.Empty(t, Validate(Default()))
}

func TestValidate_Fields(t *testing.T) {
	cfg := Default()
	cfg.Version = 0
	cfg.DatabaseFile = "db/"
	cfg.Watch.Backend = "inotify"
	cfg.Shell = "sh\x00"

	errs := Validate(cfg)

	require.Len(t, errs, 4)
	var keys []string
	for _, err := range errs {
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		keys = append(keys, fe.Key)
	}
	assert.Equal(t, []string{"version", "database_file", "watch.backend", "shell"}, keys)
	assert.True(t, errors.Is(errs[0], ErrVersionTooLow))
	assert.True(t, errors.Is(errs[2], watch.ErrUnknownBackend))
	assert.Equal(t, `database_file: invalid path (got "db/")`, errs[1].Error())
}
