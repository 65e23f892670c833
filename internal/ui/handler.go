// Package ui renders the dashboard pages. Every control change submits the
// form, and the handler recomputes the view from the immutable table.
package ui

import (
	"errors"
	"log/slog"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"socio-dash/internal/domain"
	"socio-dash/internal/service/dashboard"
)

// Handler serves the dashboard pages.
type Handler struct {
	svc    *dashboard.Service
	logger *slog.Logger
}

// NewHandler creates a Handler over a dashboard service.
func NewHandler(svc *dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("component", "ui")}
}

// YearPage renders the year view: one year, two indicators, their scatter
// and correlation.
func (h *Handler) YearPage(w http.ResponseWriter, r *http.Request) {
	sel, err := dashboard.YearSelectionFromQuery(r.URL.Query())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	view, err := h.svc.Year(sel)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, yearPage(view, h.svc.Years(), h.svc.Indicators()))
}

// IndicatorPage renders the indicator view: one indicator against health
// spending, optionally averaged per country and sampled.
func (h *Handler) IndicatorPage(w http.ResponseWriter, r *http.Request) {
	sel, err := dashboard.IndicatorSelectionFromQuery(r.URL.Query())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	view, err := h.svc.Indicator(sel)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, indicatorPage(view, sel, h.svc.Indicators()))
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		title = "Invalid Selection"
		message = validation.Error()
	default:
		h.logger.Error("render page", "path", r.URL.Path, "error", err)
	}
	renderHTML(w, status, errorPage(title, message))
}
