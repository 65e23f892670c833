package api

import (
	"net/http"
	"strconv"
	"strings"

	"socio-dash/internal/domain"
)

// intParam reads an optional integer query parameter; absent means def.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrValidation("query parameter %q must be an integer, got %q", name, raw)
	}
	return n, nil
}

func uintParam(r *http.Request, name string, def uint64) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrValidation("query parameter %q must be a non-negative integer, got %q", name, raw)
	}
	return n, nil
}

func stringParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
