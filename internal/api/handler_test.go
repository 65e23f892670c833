package api_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socio-dash/internal/api"
	"socio-dash/internal/middleware"
	"socio-dash/internal/testutil"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	h := api.NewHandler(testutil.NewDashboardService(t), slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/healthz", h.Healthz)
	r.Route("/v1", h.Mount)
	return r
}

func get(t *testing.T, h http.Handler, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

type tableBody struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

func TestHealthz(t *testing.T) {
	var body map[string]any
	require.Equal(t, http.StatusOK, get(t, newServer(t), "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.InDelta(t, 6, body["rows"], 0)
}

func TestListIndicators(t *testing.T) {
	var body struct {
		Indicators []struct {
			Column string `json:"column"`
			Label  string `json:"label"`
		} `json:"indicators"`
	}
	require.Equal(t, http.StatusOK, get(t, newServer(t), "/v1/indicators", &body))
	require.NotEmpty(t, body.Indicators)
	assert.Equal(t, "GDP_PC", body.Indicators[0].Column)
}

func TestListYears(t *testing.T) {
	var body struct {
		Years  []int `json:"years"`
		Latest int   `json:"latest"`
	}
	require.Equal(t, http.StatusOK, get(t, newServer(t), "/v1/years", &body))
	assert.Equal(t, []int{2000, 2001}, body.Years)
	assert.Equal(t, 2001, body.Latest)
}

func TestRows(t *testing.T) {
	srv := newServer(t)

	var all tableBody
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/rows", &all))
	assert.Equal(t, 6, all.RowCount)
	assert.Contains(t, all.Columns, "name_x")

	var year tableBody
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/rows?time=2000", &year))
	require.Equal(t, 3, year.RowCount)
	// TST has no demographics, so its lifeExpectancy cell is null.
	life := -1
	for i, c := range year.Columns {
		if c == "lifeExpectancy" {
			life = i
		}
	}
	require.NotEqual(t, -1, life)
	assert.Equal(t, "TST", year.Rows[2][0])
	assert.Nil(t, year.Rows[2][life])

	var present tableBody
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/rows?time=2000&column=lifeExpectancy", &present))
	assert.Equal(t, 2, present.RowCount)
}

func TestRows_Pagination(t *testing.T) {
	srv := newServer(t)

	type page struct {
		tableBody
		TotalRows     int    `json:"total_rows"`
		NextPageToken string `json:"next_page_token"`
	}

	var seen []any
	target := "/v1/rows?max_results=4"
	for range 3 {
		var p page
		require.Equal(t, http.StatusOK, get(t, srv, target, &p))
		assert.Equal(t, 6, p.TotalRows)
		for _, row := range p.Rows {
			seen = append(seen, row[0])
		}
		if p.NextPageToken == "" {
			break
		}
		target = "/v1/rows?max_results=4&page_token=" + p.NextPageToken
	}
	assert.Equal(t, []any{"AAA", "AAA", "BBB", "BBB", "TST", "TST"}, seen)

	var body api.ErrorBody
	require.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/rows?page_token=%21%21", &body))
	assert.Contains(t, body.Message, "page token")
}

func TestRows_BadParameters(t *testing.T) {
	srv := newServer(t)

	var body api.ErrorBody
	require.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/rows?time=soon", &body))
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Contains(t, body.Message, "time")
	assert.NotEmpty(t, body.RequestID)

	require.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/rows?column=nope", &body))
	assert.Contains(t, body.Message, "nope")
}

func TestScatter(t *testing.T) {
	srv := newServer(t)

	var body struct {
		Time   int `json:"time"`
		Points []struct {
			ISO3 string  `json:"iso3"`
			X    float64 `json:"x"`
			Y    float64 `json:"y"`
		} `json:"points"`
		Correlation *float64 `json:"correlation"`
		Pairs       int      `json:"pairs"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/scatter?time=2000&x=GDP_PC&y=lifeExpectancy", &body))
	assert.Equal(t, 2000, body.Time)
	require.Len(t, body.Points, 2)
	assert.Equal(t, "AAA", body.Points[0].ISO3)
	assert.Equal(t, 30000.0, body.Points[0].X)
	require.NotNil(t, body.Correlation)
	assert.InDelta(t, 1.0, *body.Correlation, 1e-12)

	// The latest year has a single pair, so the correlation is null.
	body.Correlation = nil
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/scatter", &body))
	assert.Equal(t, 2001, body.Time)
	assert.Nil(t, body.Correlation)
	assert.Equal(t, 1, body.Pairs)
}

func TestScatter_UnknownIndicator(t *testing.T) {
	var body api.ErrorBody
	require.Equal(t, http.StatusBadRequest, get(t, newServer(t), "/v1/scatter?x=region", &body))
	assert.Contains(t, body.Message, "region")
}

func TestIndicatorView(t *testing.T) {
	srv := newServer(t)

	var body struct {
		Grouped bool `json:"grouped"`
		Rows    int  `json:"rows"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/indicator-view?column=GDP_PC&group=true", &body))
	assert.True(t, body.Grouped)
	assert.Equal(t, 3, body.Rows)

	require.Equal(t, http.StatusOK, get(t, srv, "/v1/indicator-view?column=GDP_PC&n=2&seed=9", &body))
	assert.Equal(t, 2, body.Rows)

	require.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/indicator-view?group=maybe", nil))
	require.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/indicator-view?n=-1", nil))
}

func TestGroupMean(t *testing.T) {
	var body tableBody
	require.Equal(t, http.StatusOK, get(t, newServer(t), "/v1/group-mean?column=lifeExpectancy&with=spending", &body))
	assert.Equal(t, []string{"iso3", "region", "lifeExpectancy", "spending"}, body.Columns)
	require.NotEmpty(t, body.Rows)
	assert.Equal(t, "AAA", body.Rows[0][0])
	assert.InDelta(t, 80.5, body.Rows[0][2], 1e-9)
}

func TestSample(t *testing.T) {
	srv := newServer(t)

	var a, b tableBody
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/sample?n=3&seed=42", &a))
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/sample?n=3&seed=42", &b))
	assert.Equal(t, 3, a.RowCount)
	assert.Equal(t, a.Rows, b.Rows)

	var clamped tableBody
	require.Equal(t, http.StatusOK, get(t, srv, "/v1/sample?n=100", &clamped))
	assert.Equal(t, 6, clamped.RowCount)

	require.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/sample?seed=-3", nil))
}
