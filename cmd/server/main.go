// Package main is the entry point for the dashboard server. It is
// equivalent to "socio-dash serve" and exists for container images that
// run a single binary without arguments.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"socio-dash/internal/app"
	"socio-dash/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := app.NewLogger(cfg, os.Stderr)
	for _, w := range cfg.Warnings {
		logger.Warn("config", "warning", w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	a, err := app.New(ctx, app.Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return err
	}
	return app.Serve(ctx, a, cfg, logger)
}
