package config

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// NewLogger returns a text logger on w tagged with a fresh run id.
// Debug lowers the level from Warn to Debug.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run", uuid.NewString())
}
