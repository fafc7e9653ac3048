package logging

import (
	"log/slog"
	"strings"
)

// LevelTrace is below Debug and enables per-poll watcher output.
const LevelTrace = slog.LevelDebug - 4

// LevelFromVerbosity maps the count of -v flags to a log level.
// Without -v only warnings and errors are shown; -v adds info, -vv debug,
// and -vvv or more trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// VerbosityFromEnv translates a debug environment value into a -v count:
// "1" or "true" is debug, "2" is trace, anything else adds nothing.
func VerbosityFromEnv(val string) int {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true":
		return 2
	case "2":
		return 3
	default:
		return 0
	}
}
