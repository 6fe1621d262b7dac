package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger for env. Debug records are kept only in dev.
func New(env string) *slog.Logger {
	return NewTo(os.Stdout, env)
}

func NewTo(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", "parts-inventory", "env", env)
}
