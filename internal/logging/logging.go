package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/KyungWonPark/meants/internal/config"
	"github.com/google/uuid"
)

// New returns a logger writing to stderr, tagged with a fresh run_id and the host name
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is New with an explicit destination
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return slog.New(handler).With(
		slog.String("run_id", uuid.NewString()),
		slog.String("host", host),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
