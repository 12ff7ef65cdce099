package logger

import (
	"io"
	"log/slog"
	"os"
)

// InitJSONLogger configures and sets the default slog logger to use JSON format.
// Debug mode lowers the level to debug.
func InitJSONLogger(debug bool) {
	slog.SetDefault(NewJSONLogger(os.Stdout, debug))
}

// NewJSONLogger builds a JSON logger writing to w.
func NewJSONLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
