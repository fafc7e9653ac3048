package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/mcpsel/internal/errors"
	"github.com/thoreinstein/mcpsel/internal/watch"
)

var (
	ErrVersionTooLow     = errors.New("must be >= 1")
	ErrInvalidPath       = errors.New("invalid path")
	ErrInvalidInterval   = errors.New("must be positive")
	ErrNegativeRetention = errors.New("must not be negative")
)

// FieldError reports an invalid preference. Key is the dotted name used by
// "mcpsel config set".
type FieldError struct {
	Key   string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (got %q)", e.Key, e.Err, fmt.Sprint(e.Value))
}

func (e *FieldError) Unwrap() error { return e.Err }

// Validate returns one error per invalid field, in key order of Keys.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	checks := []struct {
		key   string
		value any
		err   error
	}{
		{"version", cfg.Version, when(cfg.Version < 1, ErrVersionTooLow)},
		{"settings_file", cfg.SettingsFile, checkPath(cfg.SettingsFile)},
		{"database_file", cfg.DatabaseFile, checkPath(cfg.DatabaseFile)},
		{"watch.interval", cfg.Watch.Interval, when(cfg.Watch.Interval <= 0, ErrInvalidInterval)},
		{"watch.backend", cfg.Watch.Backend, when(!watch.Backend(cfg.Watch.Backend).Valid(), watch.ErrUnknownBackend)},
		{"backup.retention", cfg.Backup.Retention, when(cfg.Backup.Retention < 0, ErrNegativeRetention)},
		{"shell", cfg.Shell, when(strings.ContainsRune(cfg.Shell, 0), ErrInvalidPath)},
	}

	var errs []error
	for _, c := range checks {
		if c.err != nil {
			errs = append(errs, &FieldError{Key: c.key, Value: c.value, Err: c.err})
		}
	}
	return errs
}

func when(bad bool, err error) error {
	if bad {
		return err
	}
	return nil
}

// checkPath accepts "" (use the default) and rejects paths with NUL bytes,
// a trailing separator, or nothing left after cleaning.
func checkPath(p string) error {
	switch {
	case p == "":
		return nil
	case strings.ContainsRune(p, 0),
		strings.HasSuffix(p, string(filepath.Separator)),
		filepath.Clean(p) == ".":
		return ErrInvalidPath
	}
	return nil
}
