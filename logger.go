package cloudanchor

import (
	"io"
	"log/slog"
	"strings"

	"github.com/go-logr/logr"
)

// NewLogger returns a JSON logger writing to w at the named level (debug, info, warn, error).
func NewLogger(w io.Writer, level string) logr.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return logr.FromSlogHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel}))
}
