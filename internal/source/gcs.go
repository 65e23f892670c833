package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Compile-time check.
var _ Opener = (*GCSOpener)(nil)

// GCSOpener reads objects from Google Cloud Storage.
type GCSOpener struct {
	client *storage.Client
}

// NewGCSOpener creates a GCS client authenticated with a service account
// key file.
func NewGCSOpener(ctx context.Context, keyFile string) (*GCSOpener, error) {
	if keyFile == "" {
		return nil, fmt.Errorf("gcs key file is required")
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, keyFile))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSOpener{client: client}, nil
}

// Open implements Opener for gs:// URIs.
func (o *GCSOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if loc.Scheme != "gs" {
		return nil, fmt.Errorf("expected gs:// scheme, got %q in %q", loc.Scheme, uri)
	}
	r, err := o.client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", uri, err)
	}
	return r, nil
}

// Close releases the underlying client.
func (o *GCSOpener) Close() error {
	return o.client.Close()
}
