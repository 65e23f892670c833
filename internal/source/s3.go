package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Compile-time check.
var _ Opener = (*S3Opener)(nil)

// S3Credentials configures an S3-compatible endpoint.
type S3Credentials struct {
	KeyID    string
	Secret   string
	Endpoint string // host, with or without scheme
	Region   string
	// VirtualHost selects vhost-style addressing; path style otherwise.
	VirtualHost bool
}

// S3Opener reads objects from an S3-compatible store.
type S3Opener struct {
	client *s3.Client
}

// NewS3Opener builds an S3 client from static credentials.
func NewS3Opener(cred S3Credentials) *S3Opener {
	endpoint := cred.Endpoint
	if endpoint != "" && !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	opts := s3.Options{
		Region: cred.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cred.KeyID, cred.Secret, "",
		),
		UsePathStyle: !cred.VirtualHost,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return &S3Opener{client: s3.New(opts)}
}

// Open implements Opener for s3:// URIs.
func (o *S3Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if loc.Scheme != "s3" {
		return nil, fmt.Errorf("expected s3:// scheme, got %q in %q", loc.Scheme, uri)
	}
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", uri, err)
	}
	return out.Body, nil
}
