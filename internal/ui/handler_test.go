package ui_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socio-dash/internal/testutil"
	"socio-dash/internal/ui"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	h := ui.NewHandler(testutil.NewDashboardService(t), slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Route("/ui", func(r chi.Router) { ui.MountRoutes(r, h) })
	return r
}

func fetch(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestYearPage_DefaultsToLatestYear(t *testing.T) {
	rec := fetch(t, newRouter(t), "/ui")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Correlation between GDP per capita and Life expectancy: NaN (1 pairs)")
	assert.Contains(t, body, `<option value="2001" selected>`)
	assert.Contains(t, body, "data-show")
	assert.Contains(t, body, "Aland")
}

func TestYearPage_SelectedYear(t *testing.T) {
	rec := fetch(t, newRouter(t), "/ui?time=2000&x=GDP_PC&y=lifeExpectancy")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Life expectancy: 1.000 (2 pairs)")
	assert.Contains(t, body, "Bland")
	assert.Equal(t, 2, countCircles(body))
}

func TestYearPage_NoPoints(t *testing.T) {
	rec := fetch(t, newRouter(t), "/ui?time=2001&x=co2_PC&y=lifeExpectancy")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No rows have both values")
	assert.NotContains(t, rec.Body.String(), "<svg")
}

func TestYearPage_InvalidSelection(t *testing.T) {
	router := newRouter(t)

	rec := fetch(t, router, "/ui?x=region")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid Selection")

	rec = fetch(t, router, "/ui?time=later")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndicatorPage(t *testing.T) {
	router := newRouter(t)

	rec := fetch(t, router, "/ui/indicator?column=GDP_PC")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "4 rows")
	assert.Contains(t, rec.Body.String(), "Government health spending")

	rec = fetch(t, router, "/ui/indicator?column=GDP_PC&group=on")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "3 rows")
	assert.Contains(t, rec.Body.String(), "checked")

	rec = fetch(t, router, "/ui/indicator?column=GDP_PC&n=2&seed=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 rows")
	assert.Equal(t, 2, countCircles(rec.Body.String()))
}

func TestIndicatorPage_SampleTooLarge(t *testing.T) {
	rec := fetch(t, newRouter(t), "/ui/indicator?n=100000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	rec := fetch(t, newRouter(t), "/ui/static/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".chart")
}

func countCircles(body string) int {
	n := 0
	for i := 0; i+len("<circle") <= len(body); i++ {
		if body[i:i+len("<circle")] == "<circle" {
			n++
		}
	}
	return n
}
