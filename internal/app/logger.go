package app

import (
	"io"
	"log/slog"

	"socio-dash/internal/config"
)

// NewLogger returns a JSON logger in production and a text logger otherwise,
// at the configured level.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
