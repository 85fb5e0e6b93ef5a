package app

import (
	"io"
	"log/slog"
)

// logLevels is the closed set of accepted --log-level values. NewConfig
// rejects anything outside it, so newLogger can index without a fallback.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the run's slog.Logger. It does not touch the global
// logger; the instance travels on the context via ctxlog.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[levelStr]}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
