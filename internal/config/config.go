package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpsel/internal/backup"
	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/paths"
	"github.com/thoreinstein/mcpsel/internal/watch"
)

// FileName is the preferences file name without extension.
const FileName = paths.AppName

// EnvPrefix prefixes environment overrides, e.g. MCPSEL_WATCH_BACKEND.
const EnvPrefix = "MCPSEL"

// Config represents the preferences file.
type Config struct {
	Version      int          `mapstructure:"version" yaml:"version"`
	SettingsFile string       `mapstructure:"settings_file" yaml:"settings_file"`
	DatabaseFile string       `mapstructure:"database_file" yaml:"database_file"`
	Watch        WatchConfig  `mapstructure:"watch" yaml:"watch"`
	Backup       BackupConfig `mapstructure:"backup" yaml:"backup"`
	// Shell runs batch commands. Empty selects sh or cmd by platform.
	Shell string `mapstructure:"shell" yaml:"shell"`
}

// WatchConfig controls file watching.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Backend  string        `mapstructure:"backend" yaml:"backend"`
}

// BackupConfig controls platform file backups.
type BackupConfig struct {
	// Retention is the number of backups kept per platform. Zero disables
	// backups.
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// Default returns the preferences used when no file is present.
func Default() *Config {
	return &Config{
		Version:      1,
		SettingsFile: paths.DefaultSettingsFile,
		DatabaseFile: paths.DefaultRegistryFile,
		Watch: WatchConfig{
			Interval: watch.DefaultInterval,
			Backend:  string(watch.BackendPoll),
		},
		Backup: BackupConfig{Retention: backup.DefaultRetention},
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.AppConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("settings_file", d.SettingsFile)
	viper.SetDefault("database_file", d.DatabaseFile)
	viper.SetDefault("watch.interval", d.Watch.Interval)
	viper.SetDefault("watch.backend", d.Watch.Backend)
	viper.SetDefault("backup.retention", d.Backup.Retention)
	viper.SetDefault("shell", d.Shell)
}

// Keys lists the recognized preference keys in display order.
func Keys() []string {
	return []string{"version", "settings_file", "database_file", "watch.interval", "watch.backend", "backup.retention", "shell"}
}

// Load reads the preferences file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults apply
		case errors.As(err, &notFound):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// Used returns the preferences file Viper loaded, or "" when defaults are
// in effect.
func Used() string {
	f := viper.ConfigFileUsed()
	if f == "" {
		return ""
	}
	if abs, err := filepath.Abs(f); err == nil {
		return abs
	}
	return f
}
