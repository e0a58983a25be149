package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"cpatminer/internal/config"
)

// setupLogging installs the default slog handler described by cfg.
func setupLogging(cfg *config.Config) {
	slog.SetDefault(newLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format))
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
