package app

import (
	"io"
	"log/slog"
)

// newLogger builds the application logger. Unknown levels fall back to info;
// any format other than "json" uses the text handler. The global logger is
// left untouched.
func newLogger(level, format string, outW io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
