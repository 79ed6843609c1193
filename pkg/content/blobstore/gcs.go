package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSObjectParams struct {
	// Bucket specifies the GCS bucket that the object resides in.
	Bucket string

	// ID specifies the ID of the GCS object.
	ID string
}

// GCSAPI contains the Google Cloud Storage operations used by GCSStore.
// Implementations return ErrNotFound from ReadObject for missing objects.
type GCSAPI interface {
	WriteObject(ctx context.Context, params GCSObjectParams, r io.Reader, contentType string) (int64, error)
	ReadObject(ctx context.Context, params GCSObjectParams) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, params GCSObjectParams) error
}

// GCSService implements GCSAPI on top of the cloud.google.com/go/storage
// client, which cannot be mocked itself.
type GCSService struct {
	Client *storage.Client
}

// NewGCSService returns a GCSService given a GCloud service account file path.
func NewGCSService(ctx context.Context, filename string) (*GCSService, error) {
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(filename))
	if err != nil {
		return nil, err
	}

	return &GCSService{Client: client}, nil
}

func (service *GCSService) object(params GCSObjectParams) *storage.ObjectHandle {
	return service.Client.Bucket(params.Bucket).Object(params.ID)
}

// WriteObject streams r into the object and returns the number of bytes written.
func (service *GCSService) WriteObject(ctx context.Context, params GCSObjectParams, r io.Reader, contentType string) (int64, error) {
	w := service.object(params).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return n, err
	}

	return n, w.Close()
}

func (service *GCSService) ReadObject(ctx context.Context, params GCSObjectParams) (io.ReadCloser, error) {
	r, err := service.object(params).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return r, err
}

// DeleteObject removes the object. Missing objects are ignored.
func (service *GCSService) DeleteObject(ctx context.Context, params GCSObjectParams) error {
	err := service.object(params).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// GCSStore keeps blobs as objects in a Google Cloud Storage bucket.
type GCSStore struct {
	// Bucket used to store the data in, e.g. "plone-blobs"
	Bucket string
	// ObjectPrefix is prepended to the name of each object, e.g. "blobs/".
	ObjectPrefix string
	// Service specifies an interface used to communicate with GCS.
	Service GCSAPI
}

// NewGCSStore constructs a new store using the supplied bucket and service object.
func NewGCSStore(bucket string, service GCSAPI) GCSStore {
	return GCSStore{
		Bucket:  bucket,
		Service: service,
	}
}

func (store GCSStore) params(key string) GCSObjectParams {
	return GCSObjectParams{
		Bucket: store.Bucket,
		ID:     store.ObjectPrefix + key,
	}
}

func (store GCSStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	n, err := store.Service.WriteObject(ctx, store.params(key), r, contentType)
	if err != nil {
		return fmt.Errorf("blobstore: unable to write object: %w", err)
	}
	if n != size {
		return fmt.Errorf("blobstore: wrote %d bytes to object, expected %d", n, size)
	}
	return nil
}

func (store GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := store.Service.ReadObject(ctx, store.params(key))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: unable to read object: %w", err)
	}
	return r, nil
}

func (store GCSStore) Delete(ctx context.Context, key string) error {
	if err := store.Service.DeleteObject(ctx, store.params(key)); err != nil {
		return fmt.Errorf("blobstore: unable to delete object: %w", err)
	}
	return nil
}
