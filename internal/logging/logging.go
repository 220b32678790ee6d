package logging

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

var level = new(slog.LevelVar)

// SetDebug lowers the level of every logger built by New.
func SetDebug(on bool) {
	if on {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// New builds the process logger: a text handler on w, plus a JSON handler
// appending to jsonPath when it is non-empty. A JSON file that cannot be
// opened is skipped, never fatal.
func New(w io.Writer, jsonPath string) *slog.Logger {
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}

	if jsonPath != "" {
		f, err := os.OpenFile(jsonPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err == nil {
			handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		}
	}

	return slog.New(slogmulti.Fanout(handlers...))
}

// Discard returns a logger that drops every record. Used by tests and by
// components that require a non-nil logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
