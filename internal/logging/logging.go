package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/thoreinstein/mcpsel/internal/errors"
)

// Format specifies the output format for log messages.
type Format string

const (
	// FormatText is the colorized human-readable format of Handler.
	FormatText Format = "text"
	// FormatJSON is slog's JSON format.
	FormatJSON Format = "json"
)

var (
	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown log format")
	// ErrConflictingFlags indicates quiet and verbose were both requested.
	ErrConflictingFlags = errors.New("quiet and verbose are mutually exclusive")
)

// ParseFormat accepts "text", "json" or "" (text), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
	}
}

// Config describes a single logger.
type Config struct {
	Level  slog.Leveler
	Format Format
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger. Both formats redact secret-looking attributes.
func New(cfg Config) *slog.Logger {
	return slog.New(newHandler(cfg))
}

func newHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, ReplaceAttr: replaceAttr}
	if cfg.Format == FormatJSON {
		return slog.NewJSONHandler(out, opts)
	}
	return NewHandler(out, opts)
}

// Options are the command-line inputs to Setup.
type Options struct {
	// Verbosity is the number of -v flags.
	Verbosity int
	Quiet     bool
	// DebugEnv is the value of the debug environment variable; it is only
	// consulted when Verbosity is zero.
	DebugEnv string
	Format   string
	Stderr   io.Writer
	// File, when set, receives a JSON copy of every record, appended.
	File string
}

// Setup builds the process logger from command-line options. The returned
// close function releases the log file and is never nil.
func Setup(o Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if o.Quiet && o.Verbosity > 0 {
		return nil, noop, ErrConflictingFlags
	}
	format, err := ParseFormat(o.Format)
	if err != nil {
		return nil, noop, err
	}

	level := slog.LevelError
	if !o.Quiet {
		v := o.Verbosity
		if v == 0 {
			v = VerbosityFromEnv(o.DebugEnv)
		}
		level = LevelFromVerbosity(v)
	}

	handler := newHandler(Config{Level: level, Format: format, Output: o.Stderr})
	if o.File == "" {
		return slog.New(handler), noop, nil
	}

	f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, noop, errors.Wrap(err, "opening log file")
	}
	file := newHandler(Config{Level: level, Format: FormatJSON, Output: f})
	return slog.New(NewMultiHandler(handler, file)), f.Close, nil
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testWriter sends each record to t.Log.
type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a Debug level logger writing to the test log, shown on
// failure or with -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return New(Config{
		Level:  slog.LevelDebug,
		Format: FormatText,
		Output: &testWriter{t: t},
	})
}
