// Package blob stores receipt images in Google Cloud Storage.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// GCS uploads objects to one bucket and returns their public URL.
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCS creates the storage client. Without a credentials file the client
// falls back to Application Default Credentials.
func NewGCS(ctx context.Context, bucket, publicBaseURL, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket, baseURL: publicBaseURL}, nil
}

// Upload writes data under key and returns its public URL. An existing
// object with the same key is never overwritten.
func (g *GCS) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	obj := g.client.Bucket(g.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy %s to GCS writer: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload of %s: %w", key, err)
	}
	return PublicURL(g.baseURL, g.bucket, key), nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// PublicURL joins base, bucket and key with single slashes.
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.Trim(bucket, "/") + "/" + strings.TrimLeft(key, "/")
}
