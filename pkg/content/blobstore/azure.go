package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// AzureAPI contains the Azure Blob Storage operations used by AzureStore.
// Implementations return ErrNotFound from Download for missing blobs.
type AzureAPI interface {
	Upload(ctx context.Context, name string, r io.Reader, contentType string) error
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

type AzConfig struct {
	AccountName         string
	AccountKey          string
	BlobAccessTier      string
	ContainerName       string
	ContainerAccessType string
	Endpoint            string
}

// AzureService implements AzureAPI for the block blobs of one container.
type AzureService struct {
	ContainerClient *container.Client
	BlobAccessTier  *blob.AccessTier
}

// NewAzureService connects to the container described by config and creates
// it if it does not exist yet.
func NewAzureService(ctx context.Context, config *AzConfig) (*AzureService, error) {
	cred, err := azblob.NewSharedKeyCredential(config.AccountName, config.AccountKey)
	if err != nil {
		return nil, err
	}

	serviceURL := fmt.Sprintf("%s/%s", config.Endpoint, config.ContainerName)
	retryOpts := policy.RetryOptions{
		MaxRetries:    5,
		RetryDelay:    100,  // Retry after 100ms initially
		MaxRetryDelay: 5000, // Max retry delay 5 seconds
	}
	containerClient, err := container.NewClientWithSharedKeyCredential(serviceURL, cred, &container.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: retryOpts,
		},
	})
	if err != nil {
		return nil, err
	}

	containerCreateOptions := &container.CreateOptions{}
	switch config.ContainerAccessType {
	case "container":
		containerCreateOptions.Access = to.Ptr(container.PublicAccessTypeContainer)
	case "blob":
		containerCreateOptions.Access = to.Ptr(container.PublicAccessTypeBlob)
	default:
		// Leaving Access nil will default to private access
	}

	_, err = containerClient.Create(ctx, containerCreateOptions)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, err
	}

	return &AzureService{
		ContainerClient: containerClient,
		BlobAccessTier:  parseAccessTier(config.BlobAccessTier),
	}, nil
}

// parseAccessTier does not support the premium access tiers.
func parseAccessTier(tier string) *blob.AccessTier {
	switch tier {
	case "archive":
		return to.Ptr(blob.AccessTierArchive)
	case "cool":
		return to.Ptr(blob.AccessTierCool)
	case "hot":
		return to.Ptr(blob.AccessTierHot)
	}
	return nil
}

func (service *AzureService) Upload(ctx context.Context, name string, r io.Reader, contentType string) error {
	_, err := service.ContainerClient.NewBlockBlobClient(name).UploadStream(ctx, r, &blockblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr(contentType),
		},
		AccessTier: service.BlobAccessTier,
	})
	return err
}

func (service *AzureService) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := service.ContainerClient.NewBlockBlobClient(name).DownloadStream(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return resp.Body, nil
}

// Delete removes the blob together with its snapshots. Missing blobs are
// ignored.
func (service *AzureService) Delete(ctx context.Context, name string) error {
	_, err := service.ContainerClient.NewBlockBlobClient(name).Delete(ctx, &blob.DeleteOptions{
		DeleteSnapshots: to.Ptr(blob.DeleteSnapshotsOptionTypeInclude),
	})
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil
	}
	return err
}

// AzureStore keeps blobs as block blobs in an Azure Storage container.
type AzureStore struct {
	// ObjectPrefix is prepended to the name of each blob, e.g. "blobs/".
	ObjectPrefix string
	// Service specifies an interface used to communicate with Azure.
	Service AzureAPI
}

// NewAzureStore constructs a new store using the supplied service object.
func NewAzureStore(service AzureAPI) AzureStore {
	return AzureStore{
		Service: service,
	}
}

func (store AzureStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	counter := &countingReader{Reader: r}
	if err := store.Service.Upload(ctx, store.ObjectPrefix+key, counter, contentType); err != nil {
		return fmt.Errorf("blobstore: unable to upload blob: %w", err)
	}
	if counter.n != size {
		return fmt.Errorf("blobstore: uploaded %d bytes to blob, expected %d", counter.n, size)
	}
	return nil
}

func (store AzureStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := store.Service.Download(ctx, store.ObjectPrefix+key)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: unable to download blob: %w", err)
	}
	return r, nil
}

func (store AzureStore) Delete(ctx context.Context, key string) error {
	if err := store.Service.Delete(ctx, store.ObjectPrefix+key); err != nil {
		return fmt.Errorf("blobstore: unable to delete blob: %w", err)
	}
	return nil
}

type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}
