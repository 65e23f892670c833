// Package api serves the dashboard data as JSON under /v1.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"socio-dash/internal/dataset"
	"socio-dash/internal/domain"
	"socio-dash/internal/middleware"
	"socio-dash/internal/query"
	"socio-dash/internal/service/dashboard"
)

// Handler serves the read-only JSON endpoints.
type Handler struct {
	svc    *dashboard.Service
	logger *slog.Logger
}

// NewHandler creates a Handler over a dashboard service.
func NewHandler(svc *dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("component", "api")}
}

// Mount registers the endpoints on r, which is expected to be the /v1
// sub-router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/indicators", h.ListIndicators)
	r.Get("/years", h.ListYears)
	r.Get("/rows", h.Rows)
	r.Get("/scatter", h.Scatter)
	r.Get("/indicator-view", h.IndicatorView)
	r.Get("/group-mean", h.GroupMean)
	r.Get("/sample", h.Sample)
}

// Healthz reports liveness and the size of the combined table.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	t := h.svc.Table()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"rows":    t.Len(),
		"columns": len(t.Columns()),
	})
}

// TableResponse is the JSON form of a table.
type TableResponse struct {
	Columns  []string          `json:"columns"`
	Rows     [][]dataset.Value `json:"rows"`
	RowCount int               `json:"row_count"`
}

func tableResponse(t *dataset.Table) TableResponse {
	rows := make([][]dataset.Value, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return TableResponse{Columns: t.Columns(), Rows: rows, RowCount: t.Len()}
}

// ListIndicators returns the plottable indicator allow-list.
func (h *Handler) ListIndicators(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]query.IndicatorSpec{"indicators": h.svc.Indicators()})
}

// ListYears returns the distinct years of the combined table.
func (h *Handler) ListYears(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"years": h.svc.Years(), "latest": h.svc.LatestYear()})
}

type rowsResponse struct {
	TableResponse
	TotalRows     int    `json:"total_rows"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// Rows returns one page of combined rows filtered by ?time= and ?column=.
// Pages are sized by ?max_results= and continued with ?page_token=.
func (h *Handler) Rows(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "time", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	maxResults, err := intParam(r, "max_results", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Rows(year, stringParam(r, "column"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page := domain.PageRequest{MaxResults: maxResults, PageToken: stringParam(r, "page_token")}
	start, end, next, err := page.Window(t.Len())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rowsResponse{
		TableResponse: tableResponse(t.Filter(func(i int) bool { return i >= start && i < end })),
		TotalRows:     t.Len(),
		NextPageToken: next,
	})
}

type scatterResponse struct {
	*dashboard.YearView
	Correlation *float64 `json:"correlation"`
}

// Scatter returns the year view: points for ?x= against ?y= in ?time= and
// their correlation, null when undefined.
func (h *Handler) Scatter(w http.ResponseWriter, r *http.Request) {
	sel, err := dashboard.YearSelectionFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Year(sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scatterResponse{YearView: v, Correlation: v.CorrelationValue()})
}

type indicatorResponse struct {
	*dashboard.IndicatorView
	Correlation *float64 `json:"correlation"`
}

// IndicatorView returns ?column= plotted against spending, optionally
// averaged per country (?group=true) and sampled (?n=&seed=).
func (h *Handler) IndicatorView(w http.ResponseWriter, r *http.Request) {
	sel, err := dashboard.IndicatorSelectionFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Indicator(sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indicatorResponse{IndicatorView: v, Correlation: v.CorrelationValue()})
}

// GroupMean returns the (iso3, region) means of ?column= and ?with=.
func (h *Handler) GroupMean(w http.ResponseWriter, r *http.Request) {
	column := stringParam(r, "column")
	if column == "" {
		column = dashboard.DefaultX
	}
	t, err := h.svc.GroupMean(column, stringParam(r, "with"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse(t))
}

// Sample returns ?n= rows drawn with ?seed=.
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", dashboard.DefaultSampleSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	seed, err := uintParam(r, "seed", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Sample(n, seed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse(t))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorBody{
		Code:      status,
		Message:   msg,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}
