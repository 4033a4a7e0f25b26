package app

import (
	"io"
	"log/slog"
)

// newLogger builds the compiler's logger from the validated config knobs.
// Each App owns its handler, so parallel compilations in tests never
// interleave output through a shared global.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// parseLevel maps a config string to a slog level. Anything unrecognized
// falls back to info; the CLI rejects invalid levels before they get here.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
