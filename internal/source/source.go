// Package source opens the raw input files, wherever they live: the local
// filesystem or an S3, GCS or Azure Blob object store.
package source

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"slices"
	"strings"

	"socio-dash/internal/domain"
)

// Opener opens a source URI for reading.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Location is a parsed source URI.
type Location struct {
	Scheme string // "file", "s3", "gs" or "az"
	Bucket string // bucket or container; empty for local files
	Key    string // object key or local path
}

// ParseURI splits a source URI. Plain paths and file:// URIs are local;
// s3://bucket/key, gs://bucket/key and az://container/blob are remote.
func ParseURI(uri string) (Location, error) {
	if !strings.Contains(uri, "://") {
		if uri == "" {
			return Location{}, domain.ErrValidation("empty source uri")
		}
		return Location{Scheme: "file", Key: uri}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("parse source uri %q: %w", uri, err)
	}
	switch u.Scheme {
	case "file":
		return Location{Scheme: "file", Key: u.Host + u.Path}, nil
	case "s3", "gs", "az":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, domain.ErrValidation("source uri %q needs both a bucket and a key", uri)
		}
		return Location{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
	default:
		return Location{}, domain.ErrValidation("unsupported source scheme %q in %q", u.Scheme, uri)
	}
}

// Router dispatches Open calls to the opener registered for the URI scheme.
type Router struct {
	openers map[string]Opener
}

// NewRouter returns a router that serves local files. Remote schemes are
// added with Register.
func NewRouter() *Router {
	return &Router{openers: map[string]Opener{"file": LocalOpener{}}}
}

// Register binds an opener to a scheme, replacing any previous binding.
func (r *Router) Register(scheme string, o Opener) {
	r.openers[scheme] = o
}

// Schemes lists the registered schemes in sorted order.
func (r *Router) Schemes() []string {
	return slices.Sorted(maps.Keys(r.openers))
}

// Open implements Opener.
func (r *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	o, ok := r.openers[loc.Scheme]
	if !ok {
		return nil, domain.ErrValidation("no credentials configured for %s:// sources (%s)", loc.Scheme, uri)
	}
	return o.Open(ctx, uri)
}

// LocalOpener reads files from the local filesystem.
type LocalOpener struct{}

// Open implements Opener.
func (LocalOpener) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(loc.Key) //nolint:gosec // path comes from operator config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound("source file %q not found", loc.Key)
		}
		return nil, fmt.Errorf("open %s: %w", loc.Key, err)
	}
	return f, nil
}
