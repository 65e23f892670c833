package source

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// Compile-time check.
var _ Opener = (*AzureOpener)(nil)

// AzureOpener reads blobs from Azure Blob Storage using shared-key
// credentials. URIs take the form az://container/path/to/blob.
type AzureOpener struct {
	client *azblob.Client
}

// NewAzureOpener creates a blob client for the given storage account.
func NewAzureOpener(accountName, accountKey string) (*AzureOpener, error) {
	if accountName == "" || accountKey == "" {
		return nil, fmt.Errorf("azure account name and key are required")
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureOpener{client: client}, nil
}

// Open implements Opener for az:// URIs.
func (o *AzureOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if loc.Scheme != "az" {
		return nil, fmt.Errorf("expected az:// scheme, got %q in %q", loc.Scheme, uri)
	}
	resp, err := o.client.DownloadStream(ctx, loc.Bucket, loc.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("download blob %q: %w", uri, err)
	}
	return resp.Body, nil
}
