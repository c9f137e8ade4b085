package logger

import (
	"log/slog"
	"os"
)

// New returns a slog logger tuned for the given environment: human-readable
// text with debug level in development, JSON at info level elsewhere.
func New(env string) *slog.Logger {
	switch env {
	case "development", "local":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}

// Err wraps an error as a slog attribute for consistent structured logging.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
