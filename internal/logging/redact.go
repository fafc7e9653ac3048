package logging

import (
	"fmt"
	"log/slog"

	"github.com/thoreinstein/mcpsel/internal/redact"
)

// replaceAttr is the slog.HandlerOptions hook. The built-in keys are left
// alone so a message is never masked.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey, slog.SourceKey:
			return a
		}
	}
	return redactAttr(a)
}

// redactAttr masks values under secret-looking keys, token-shaped strings,
// argument lists and env maps.
func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindGroup:
		return a
	case slog.KindString:
		if s := a.Value.String(); redact.ShouldMask(a.Key) || redact.ContainsTokenPrefix(s) {
			a.Value = slog.StringValue(redact.MaskValue(s))
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case []string:
			a.Value = slog.AnyValue(redact.Args(v))
		case map[string]string:
			a.Value = slog.AnyValue(redact.Env(v))
		default:
			if redact.ShouldMask(a.Key) {
				a.Value = slog.StringValue(redact.MaskValue(fmt.Sprint(v)))
			}
		}
	default:
		if redact.ShouldMask(a.Key) {
			a.Value = slog.StringValue(redact.MaskValue(a.Value.String()))
		}
	}
	return a
}
