// Package storage archives files to a named disk.
//
// Three drivers are available:
//   - "local": local filesystem (default)
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2)
//   - "gcs":   Google Cloud Storage
//
// Receipts are the only thing written today:
//
//	disk, _ := storage.Default()
//	_ = disk.Put(ctx, "receipts/2024/05/tx-1.pdf", pdf, "application/pdf")
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, replacing any existing file.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
