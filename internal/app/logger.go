package app

import (
	"io"
	"log/slog"
)

// levelNames maps the CLI level flag onto slog levels. An unknown name
// falls back to info.
var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the run-scoped logger. The global slog default is left
// untouched, so every App instance logs independently.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := levelNames[levelStr]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
