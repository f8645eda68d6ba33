package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON in production pipelines, text
// for local reading, debug level outside production. Every record carries a
// service attribute so the API and worker share one log stream cleanly.
func NewLogger(cfg *Config) *slog.Logger {
	return newLoggerTo(os.Stdout, cfg)
}

func newLoggerTo(w io.Writer, cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	if !cfg.IsProduction() {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: level}

	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "praxis"))
}
