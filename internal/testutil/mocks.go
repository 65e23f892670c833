// Package testutil provides shared fixtures and mock implementations for
// use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"io"
	"strings"
	"sync"

	"socio-dash/internal/domain"
)

// === Source Opener Mock ===

// MockOpener implements source.Opener over in-memory files keyed by URI.
type MockOpener struct {
	OpenFn func(ctx context.Context, uri string) (io.ReadCloser, error)
	Files  map[string]string

	mu     sync.Mutex
	Opened []string // URIs opened, for assertions
}

// Open implements the interface method for testing.
func (m *MockOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.Opened = append(m.Opened, uri)
	m.mu.Unlock()
	if m.OpenFn != nil {
		return m.OpenFn(ctx, uri)
	}
	body, ok := m.Files[uri]
	if !ok {
		return nil, domain.ErrNotFound("source %q not found", uri)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}
