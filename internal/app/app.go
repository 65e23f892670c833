// Package app wires configuration, sources, the startup pipeline and the
// read-only services into one immutable application value.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"socio-dash/internal/config"
	"socio-dash/internal/engine"
	"socio-dash/internal/normalize"
	"socio-dash/internal/pipeline"
	"socio-dash/internal/query"
	"socio-dash/internal/service/dashboard"
	"socio-dash/internal/source"
)

// Deps holds what the caller must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Opener overrides the scheme router built from Cfg. Tests use it to
	// serve fixtures.
	Opener source.Opener
	// DuckDB, when set, receives a mirror of the combined table for ad-hoc
	// SQL. Typically sql.Open("duckdb", "").
	DuckDB *sql.DB
}

// App is the fully built application. Nothing in it changes after New
// returns.
type App struct {
	Result    *pipeline.Result
	Registry  *query.Registry
	Dashboard *dashboard.Service
	Mirror    *engine.Mirror // nil without Deps.DuckDB
}

// Sources returns the pipeline sources named by cfg.
func Sources(cfg *config.Config) pipeline.Sources {
	return pipeline.Sources{
		Demographics: cfg.DemographicsURI,
		Economic:     cfg.EconomicURI,
		Spending:     cfg.SpendingURI,
	}
}

// New runs the pipeline once, validates the indicator allow-list against the
// combined table and builds the services. Any failure aborts startup.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger

	opener := deps.Opener
	if opener == nil {
		router, closeFn, err := NewOpener(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		opener = router
	}

	res, err := pipeline.NewBuilder(opener, logger).Build(ctx, Sources(cfg), pipeline.Options{
		SpendingYears: normalize.YearRange{From: cfg.SpendingYearFrom, To: cfg.SpendingYearTo},
	})
	if err != nil {
		return nil, fmt.Errorf("build combined table: %w", err)
	}

	specs := query.DefaultIndicators
	if cfg.IndicatorsFile != "" {
		if specs, err = query.LoadIndicatorSpecs(cfg.IndicatorsFile); err != nil {
			return nil, err
		}
		logger.Info("indicator allow-list loaded", "path", cfg.IndicatorsFile, "indicators", len(specs))
	}
	registry, err := query.NewRegistry(res.Combined, specs)
	if err != nil {
		return nil, fmt.Errorf("validate indicators: %w", err)
	}

	a := &App{
		Result:    res,
		Registry:  registry,
		Dashboard: dashboard.NewService(res.Combined, registry),
	}
	if deps.DuckDB != nil {
		if a.Mirror, err = engine.NewMirror(ctx, deps.DuckDB, res.Combined, logger.With("component", "engine")); err != nil {
			return nil, err
		}
	}
	return a, nil
}
