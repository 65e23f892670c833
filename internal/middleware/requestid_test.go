package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureID serves one request carrying header (if non-empty) and returns the
// ID seen by the handler and the response header.
func captureID(t *testing.T, header string) (seen, echoed string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	if header != "" {
		req.Header.Set("X-Request-ID", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	return seen, rec.Header().Get("X-Request-ID")
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	seen, echoed := captureID(t, "")
	require.Len(t, seen, 36)
	assert.Equal(t, seen, echoed)
}

func TestRequestID_IncomingHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"dashed alphanumeric", "abc-123_DEF", true},
		{"dotted", "trace.0042", true},
		{"max length", strings.Repeat("a", maxRequestIDLen), true},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
		{"newline", "id\nforged: line", false},
		{"carriage return", "id\rforged", false},
		{"spaces", "id with spaces", false},
		{"markup", "<b>id</b>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, echoed := captureID(t, tt.header)
			assert.Equal(t, seen, echoed)
			if tt.keep {
				assert.Equal(t, tt.header, seen)
			} else {
				assert.NotEqual(t, tt.header, seen)
				assert.NotEmpty(t, seen)
			}
		})
	}
}

func TestRequestIDFromContext_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
