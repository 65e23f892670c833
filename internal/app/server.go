package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"socio-dash/internal/api"
	"socio-dash/internal/config"
	"socio-dash/internal/middleware"
	"socio-dash/internal/ui"
)

// NewRouter builds the HTTP surface: /healthz, the JSON API under /v1 and
// the dashboard under /ui. ctx bounds the rate limiter's background sweep.
func NewRouter(ctx context.Context, a *App, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger.With("component", "http")))
	r.Use(chimw.Recoverer)

	apiHandler := api.NewHandler(a.Dashboard, logger)
	uiHandler := ui.NewHandler(a.Dashboard, logger)

	r.Get("/healthz", apiHandler.Healthz)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusFound)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			MaxAge:         300,
		}))
		if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
			r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
				RequestsPerSecond: cfg.RateLimitRPS,
				Burst:             cfg.RateLimitBurst,
			}))
		}
		apiHandler.Mount(r)
	})
	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler)
	})
	return r
}

// Serve runs the HTTP server until ctx is done, then shuts it down
// gracefully.
func Serve(ctx context.Context, a *App, cfg *config.Config, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(ctx, a, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("dashboard listening", "addr", cfg.ListenAddr,
		"rows", a.Result.Combined.Len(), "indicators", len(a.Registry.List()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
