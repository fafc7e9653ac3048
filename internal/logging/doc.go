// Package logging builds the slog loggers used by mcpsel.
//
// Text output goes through [Handler], which colors level and keys on a
// terminal; JSON output uses slog's JSON handler. Both mask secret-looking
// attributes (tokens, keys, env maps, argument lists) before they are
// written, using package redact.
//
// Commands call [Setup] once with the parsed flags:
//
//	logger, closeLog, err := logging.Setup(logging.Options{
//		Verbosity: 2,
//		Format:    "text",
//		Stderr:    os.Stderr,
//	})
//
// Tests use [ForTest] so log lines appear next to the failing assertion.
package logging
