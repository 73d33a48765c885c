package logger

import (
	"log/slog"
	"os"
)

const (
	EnvLocal = "local"
)

// New returns a human readable debug logger for local runs and a JSON logger
// at info level everywhere else.
func New(env string) *slog.Logger {
	switch env {
	case EnvLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
