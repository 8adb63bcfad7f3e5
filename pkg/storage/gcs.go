package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/shashiranjanraj/paintpos/config"
)

// gcsDisk stores objects in a Google Cloud Storage bucket. It authenticates
// with the Firestore service-account file when one is configured, otherwise
// with application default credentials.
type gcsDisk struct {
	bucket  *gcs.BucketHandle
	name    string
	baseURL string
}

func newGCSDisk(ctx context.Context, bucket, baseURL string) (*gcsDisk, error) {
	var opts []option.ClientOption
	if f := config.FirestoreCredentialsFile(); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/gcs: new client: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &gcsDisk{bucket: client.Bucket(bucket), name: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *gcsDisk) Put(ctx context.Context, path string, content []byte, contentType string) error {
	w := d.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage/gcs: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage/gcs: close %s: %w", path, err)
	}
	return nil
}

func (d *gcsDisk) Get(ctx context.Context, path string) ([]byte, error) {
	r, err := d.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("storage/gcs: read %s: %w", path, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (d *gcsDisk) Exists(ctx context.Context, path string) (bool, error) {
	_, err := d.bucket.Object(path).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage/gcs: attrs %s: %w", path, err)
	}
	return true, nil
}

func (d *gcsDisk) Delete(ctx context.Context, path string) error {
	err := d.bucket.Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage/gcs: delete %s: %w", path, err)
	}
	return nil
}

func (d *gcsDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}
