package app_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socio-dash/internal/app"
	"socio-dash/internal/config"
	"socio-dash/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		DemographicsURI:    testutil.DemographicsURI,
		EconomicURI:        testutil.EconomicURI,
		SpendingURI:        testutil.SpendingURI,
		SpendingYearFrom:   2000,
		SpendingYearTo:     2019,
		LogLevel:           "info",
		Env:                "development",
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		CORSAllowedOrigins: []string{"*"},
	}
}

func newApp(t *testing.T, cfg *config.Config, db *sql.DB) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), app.Deps{
		Cfg:    cfg,
		Logger: slog.New(slog.DiscardHandler),
		Opener: testutil.NewFixtureOpener(),
		DuckDB: db,
	})
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	a := newApp(t, testConfig(), nil)
	assert.Equal(t, 6, a.Result.Combined.Len())
	assert.Len(t, a.Registry.List(), 5)
	assert.Equal(t, 2001, a.Dashboard.LatestYear())
	assert.Nil(t, a.Mirror)
}

func TestNew_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	demo, econ, spend := testutil.WriteFixtureFiles(t, dir)
	cfg := testConfig()
	cfg.DemographicsURI, cfg.EconomicURI, cfg.SpendingURI = demo, "file://"+econ, spend

	a, err := app.New(context.Background(), app.Deps{Cfg: cfg, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	assert.Equal(t, 6, a.Result.Combined.Len())
}

func TestNew_IndicatorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indicators:\n  - column: GDP_PC\n    label: GDP\n  - column: spending\n"), 0o600))
	cfg := testConfig()
	cfg.IndicatorsFile = path

	a := newApp(t, cfg, nil)
	require.Len(t, a.Registry.List(), 2)
	assert.Equal(t, "spending", a.Registry.List()[1].Label)
}

func TestNew_UnknownIndicatorAbortsStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indicators:\n  - column: happiness\n"), 0o600))
	cfg := testConfig()
	cfg.IndicatorsFile = path

	_, err := app.New(context.Background(), app.Deps{
		Cfg: cfg, Logger: slog.New(slog.DiscardHandler), Opener: testutil.NewFixtureOpener(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "happiness")
}

func TestNew_Mirror(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := newApp(t, testConfig(), db)
	require.NotNil(t, a.Mirror)
	got, err := a.Mirror.Query(context.Background(), "SELECT count(*) AS n FROM combined")
	require.NoError(t, err)
	n, _ := got.Value(0, "n").Float()
	assert.Equal(t, 6.0, n)
}

func TestNewOpener(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	r, closeFn, err := app.NewOpener(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	closeFn()
	assert.Equal(t, []string{"file"}, r.Schemes())

	cfg := testConfig()
	cfg.S3KeyID, cfg.S3Secret, cfg.S3Endpoint, cfg.S3Region = "k", "s", "localhost:9000", "us-east-1"
	cfg.AzureAccountName, cfg.AzureAccountKey = "acct", "a2V5"
	r, closeFn, err = app.NewOpener(context.Background(), cfg, logger)
	require.NoError(t, err)
	closeFn()
	assert.ElementsMatch(t, []string{"az", "file", "s3"}, r.Schemes())
}

func TestRouter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := testConfig()
	router := app.NewRouter(ctx, newApp(t, cfg, nil), cfg, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/ui", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/v1/years", nil)
	req.Header.Set("Origin", "https://example.org")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "200", rec.Header().Get("X-RateLimit-Limit"))
	var years struct {
		Years []int `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &years))
	assert.Equal(t, []int{2000, 2001}, years.Years)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ui/indicator", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Env = "production"
	app.NewLogger(cfg, &buf).Info("hello", "k", 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])

	buf.Reset()
	cfg.Env = "development"
	cfg.LogLevel = "warn"
	app.NewLogger(cfg, &buf).Info("hidden")
	assert.Empty(t, buf.String())
}
