package testutil

import (
	"context"
	"log/slog"
	"testing"

	"socio-dash/internal/pipeline"
	"socio-dash/internal/query"
	"socio-dash/internal/service/dashboard"
)

// FixtureSources points the pipeline at the in-memory fixtures.
var FixtureSources = pipeline.Sources{
	Demographics: DemographicsURI,
	Economic:     EconomicURI,
	Spending:     SpendingURI,
}

// BuildFixtures runs the pipeline over the fixture sources.
func BuildFixtures(t *testing.T) *pipeline.Result {
	t.Helper()
	res, err := pipeline.NewBuilder(NewFixtureOpener(), slog.New(slog.DiscardHandler)).
		Build(context.Background(), FixtureSources, pipeline.Options{})
	if err != nil {
		t.Fatalf("build fixtures: %v", err)
	}
	return res
}

// NewDashboardService builds a dashboard service over the fixture combined
// table with the default indicator allow-list.
func NewDashboardService(t *testing.T) *dashboard.Service {
	t.Helper()
	res := BuildFixtures(t)
	reg, err := query.NewRegistry(res.Combined, query.DefaultIndicators)
	if err != nil {
		t.Fatalf("indicator registry: %v", err)
	}
	return dashboard.NewService(res.Combined, reg)
}
