package app

import (
	"context"
	"fmt"
	"log/slog"

	"socio-dash/internal/config"
	"socio-dash/internal/source"
)

// NewOpener builds a scheme router with the local opener plus every remote
// opener whose credentials are configured. The returned func releases the
// remote clients once the sources have been read.
func NewOpener(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*source.Router, func(), error) {
	router := source.NewRouter()
	closers := []func() error{}

	if cfg.HasS3Config() {
		router.Register("s3", source.NewS3Opener(source.S3Credentials{
			KeyID:       cfg.S3KeyID,
			Secret:      cfg.S3Secret,
			Endpoint:    cfg.S3Endpoint,
			Region:      cfg.S3Region,
			VirtualHost: cfg.S3VirtualHost,
		}))
	}
	if cfg.HasGCSConfig() {
		gcs, err := source.NewGCSOpener(ctx, cfg.GCSKeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs source: %w", err)
		}
		router.Register("gs", gcs)
		closers = append(closers, gcs.Close)
	}
	if cfg.HasAzureConfig() {
		az, err := source.NewAzureOpener(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			return nil, nil, fmt.Errorf("azure source: %w", err)
		}
		router.Register("az", az)
	}

	logger.Debug("source schemes", "schemes", router.Schemes())
	return router, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close source client", "error", err)
			}
		}
	}, nil
}
