package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/exp/slog"

	"github.com/FHNW/plone.restapi/internal/s3log"
	"github.com/FHNW/plone.restapi/pkg/content"
	"github.com/FHNW/plone.restapi/pkg/content/blobstore"
	"github.com/FHNW/plone.restapi/pkg/filelocker"
	"github.com/FHNW/plone.restapi/pkg/finalizer"
	"github.com/FHNW/plone.restapi/pkg/handler"
	"github.com/FHNW/plone.restapi/pkg/memorylocker"
	"github.com/FHNW/plone.restapi/pkg/redislocker"
	"github.com/FHNW/plone.restapi/pkg/sessionstore"
)

var (
	Composer  *handler.StoreComposer
	Store     sessionstore.Store
	Content   *content.Repository
	Finalizer *finalizer.Finalizer
)

// uploadHandler is set once Serve created the handler. Sweeps which happen
// before that are not counted.
var uploadHandler *handler.Handler

func CreateComposer() {
	if err := createComposer(context.Background()); err != nil {
		stderr.Fatalf("%s", err)
	}
}

func createComposer(ctx context.Context) error {
	Composer = handler.NewStoreComposer()

	dir := Flags.TmpFileDir
	printStartupLog("Using '%s' as directory for upload sessions.\n", dir)
	if err := os.MkdirAll(dir, os.FileMode(0774)); err != nil {
		return fmt.Errorf("unable to ensure directory exists: %s", err)
	}

	Store = sessionstore.New(dir)
	Store.ExpirationPeriod = Flags.ExpirationPeriod
	Store.SweepOnCreate = !Flags.DisableSweepOnCreate
	Store.Logger = slog.Default()
	Store.OnExpired = func(n int) {
		if uploadHandler != nil {
			uploadHandler.Metrics.IncSessionsExpired(n)
		}
	}
	Store.UseIn(Composer)

	printStartupLog("Using %s as expiration period.\n", Flags.ExpirationPeriod)

	switch Flags.Locker {
	case "file":
		locker := filelocker.New(dir)
		locker.HolderPollInterval = Flags.FilelockHolderPollInterval
		locker.AcquirerPollInterval = Flags.FilelockAcquirerPollInterval
		locker.UseIn(Composer)
	case "redis":
		printStartupLog("Using '%s' for locking.\n", Flags.RedisURI)
		locker, err := redislocker.New(ctx, Flags.RedisURI,
			redislocker.WithLogger(slog.Default()),
			redislocker.WithLockExpiry(Flags.RedisLockExpiry),
		)
		if err != nil {
			return fmt.Errorf("unable to connect to Redis: %s", err)
		}
		locker.UseIn(Composer)
	default:
		memorylocker.New().UseIn(Composer)
	}

	blobs, err := createBlobStore(ctx)
	if err != nil {
		return err
	}

	printStartupLog("Using '%s' as content database.\n", Flags.ContentDSN)
	Content, err = content.Open(Flags.ContentDSN, blobs, slog.Default())
	if err != nil {
		return err
	}

	for _, folder := range Flags.ContentFolders {
		parent := path.Dir(folder)
		if parent == "." {
			parent = ""
		}
		if _, err := Content.CreateFolder(ctx, parent, path.Base(folder)); err != nil {
			return fmt.Errorf("unable to create folder '%s': %s", folder, err)
		}
	}

	Finalizer = finalizer.New(Content, content.DefaultRegistry, Flags.FinalizeConcurrency)
	Finalizer.Logger = slog.Default()

	printStartupLog("Using %.2fMB as maximum size.\n", float64(Flags.MaxSize)/1024/1024)

	return nil
}

func createBlobStore(ctx context.Context) (blobstore.Store, error) {
	switch {
	case Flags.S3Bucket != "":
		return createS3Store(ctx)
	case Flags.GCSBucket != "":
		return createGCSStore(ctx)
	case Flags.AzStorage != "":
		return createAzureStore(ctx)
	}

	printStartupLog("Using '%s' as directory for blobs.\n", Flags.BlobDir)
	return blobstore.NewLocalStore(Flags.BlobDir)
}

func createGCSStore(ctx context.Context) (blobstore.Store, error) {
	// Derive credentials from service account file path passed in
	// GCS_SERVICE_ACCOUNT_FILE environment variable.
	gcsSAF := os.Getenv("GCS_SERVICE_ACCOUNT_FILE")
	if gcsSAF == "" {
		return nil, errors.New("no service account file provided for Google Cloud Storage using the GCS_SERVICE_ACCOUNT_FILE environment variable")
	}

	service, err := blobstore.NewGCSService(ctx, gcsSAF)
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Cloud Storage service: %s", err)
	}

	printStartupLog("Using 'gcs://%s' as GCS bucket for blobs.\n", Flags.GCSBucket)

	store := blobstore.NewGCSStore(Flags.GCSBucket, service)
	store.ObjectPrefix = Flags.GCSObjectPrefix
	return store, nil
}

func createAzureStore(ctx context.Context) (blobstore.Store, error) {
	accountName := os.Getenv("AZURE_STORAGE_ACCOUNT")
	if accountName == "" {
		return nil, errors.New("no service account name for Azure BlockBlob Storage using the AZURE_STORAGE_ACCOUNT environment variable provided")
	}

	accountKey := os.Getenv("AZURE_STORAGE_KEY")
	if accountKey == "" {
		return nil, errors.New("no service account key for Azure BlockBlob Storage using the AZURE_STORAGE_KEY environment variable provided")
	}

	azureEndpoint := Flags.AzEndpoint
	// Enables support for using Azurite as a storage emulator without messing with proxies and stuff
	// e.g. http://127.0.0.1:10000/devstoreaccount1
	if azureEndpoint == "" {
		azureEndpoint = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}
	printStartupLog("Using '%s/%s' as Azure endpoint and container for blobs.\n", azureEndpoint, Flags.AzStorage)

	service, err := blobstore.NewAzureService(ctx, &blobstore.AzConfig{
		AccountName:         accountName,
		AccountKey:          accountKey,
		BlobAccessTier:      Flags.AzBlobAccessTier,
		ContainerName:       Flags.AzStorage,
		ContainerAccessType: Flags.AzContainerAccessType,
		Endpoint:            azureEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Azure BlockBlob Storage service: %s", err)
	}

	store := blobstore.NewAzureStore(service)
	store.ObjectPrefix = Flags.AzObjectPrefix
	return store, nil
}

func createS3Store(ctx context.Context) (blobstore.Store, error) {
	// Derive credentials from default credential chain (env, shared, ec2 instance role)
	// as per https://github.com/aws/aws-sdk-go-v2#configuring-credentials
	s3Config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load S3 configuration: %s", err)
	}

	if Flags.S3Endpoint == "" {
		printStartupLog("Using 's3://%s' as S3 bucket for blobs.\n", Flags.S3Bucket)
	} else {
		printStartupLog("Using '%s/%s' as S3 endpoint and bucket for blobs.\n", Flags.S3Endpoint, Flags.S3Bucket)
	}

	s3Client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		if Flags.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(Flags.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	var s3Api blobstore.S3API = s3Client
	if Flags.S3LogAPICalls {
		s3Api = s3log.New(s3Api, slog.Default())
	}

	store := blobstore.NewS3Store(Flags.S3Bucket, s3Api)
	store.ObjectPrefix = Flags.S3ObjectPrefix
	if Flags.ExposeMetrics {
		store.RegisterMetrics(metricsRegistry)
	}

	return store, nil
}
