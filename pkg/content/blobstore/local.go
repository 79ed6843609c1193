package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs as files in a single directory.
type LocalStore struct {
	Dir string
}

// NewLocalStore creates dir if necessary.
func NewLocalStore(dir string) (LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return LocalStore{}, fmt.Errorf("blobstore: failed to create directory: %w", err)
	}
	return LocalStore{Dir: dir}, nil
}

func (store LocalStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("blobstore: invalid key %q", key)
	}
	return filepath.Join(store.Dir, key), nil
}

// Put writes into a temporary file first, so that readers never observe a
// partially written blob.
func (store LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	path, err := store.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(store.Dir, ".tmp-"+key+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return err
	}
	if n != size {
		tmp.Close()
		return fmt.Errorf("blobstore: expected %d bytes but got %d", size, n)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func (store LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := store.path(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return file, err
}

func (store LocalStore) Delete(ctx context.Context, key string) error {
	path, err := store.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
