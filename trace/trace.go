// Package trace carries the structured event log shared by the simulated
// SoC components and the bring-up drivers.
package trace

import (
	"context"
	"io"
	"log/slog"
)

// LevelTrace sits just above Info. A handler at LevelTrace keeps the
// component events and drops routine Info messages.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace emits one key/value event at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// NewJSONLogger returns a logger that writes every event at or above level
// as one JSON object per line.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}

// Discard silences the default logger. Tests call it so that traces from
// thousands of register accesses do not flood the output.
func Discard() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
