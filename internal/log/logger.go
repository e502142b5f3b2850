// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Setup initializes the global logger. Level defaults to INFO when the
// given level is unrecognized. Format "console" uses a human-readable
// colored handler; anything else gets JSON.
func Setup(level, format string) {
	once.Do(func() {
		l := parseLevel(level)

		var handler slog.Handler
		if strings.EqualFold(format, "console") {
			handler = tint.NewHandler(os.Stdout, &tint.Options{
				Level:      l,
				TimeFormat: time.Kitchen,
			})
		} else {
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l})
		}

		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the configured logger, or a default one if Setup hasn't been
// called.
func Get() *slog.Logger {
	if logger == nil {
		Setup("INFO", "json")
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}
