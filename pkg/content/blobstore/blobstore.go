// Package blobstore keeps the binary data of content objects outside of the
// content database. Objects only store the key of their blob.
package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("blobstore: blob not found")

// Store persists blobs under opaque keys chosen by the caller.
type Store interface {
	// Put stores size bytes from r under key, replacing an existing blob.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens the blob stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error
}
