package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/prometheus/client_golang/prometheus"
)

// S3API contains the calls of the S3 client used by S3Store. *s3.Client
// implements it.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opt ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opt ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opt ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

const (
	metricPutObject    = "put_object"
	metricGetObject    = "get_object"
	metricDeleteObject = "delete_object"
)

// S3Store keeps blobs as objects in an S3 bucket.
type S3Store struct {
	// Bucket used to store the data in, e.g. "plone-blobs"
	Bucket string
	// ObjectPrefix is prepended to the key of each object, e.g. "blobs/".
	ObjectPrefix string
	// Service specifies an interface used to communicate with the S3 backend.
	Service S3API

	requestDurationMetric *prometheus.SummaryVec
}

// NewS3Store constructs a new store using the supplied bucket and service object.
func NewS3Store(bucket string, service S3API) S3Store {
	requestDurationMetric := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "tus_blob_s3_request_duration_ms",
		Help:       "Duration of requests sent to S3 in milliseconds per operation",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"operation"})

	return S3Store{
		Bucket:                bucket,
		Service:               service,
		requestDurationMetric: requestDurationMetric,
	}
}

// RegisterMetrics registers the S3 request duration summary.
func (store S3Store) RegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(store.requestDurationMetric)
}

func (store S3Store) observeRequestDuration(start time.Time, label string) {
	if store.requestDurationMetric == nil {
		return
	}
	elapsed := time.Since(start)
	ms := float64(elapsed.Nanoseconds() / int64(time.Millisecond))

	store.requestDurationMetric.WithLabelValues(label).Observe(ms)
}

func (store S3Store) key(key string) *string {
	return aws.String(store.ObjectPrefix + key)
}

func (store S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	t := time.Now()
	_, err := store.Service.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(store.Bucket),
		Key:           store.key(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	store.observeRequestDuration(t, metricPutObject)
	if err != nil {
		return fmt.Errorf("blobstore: unable to put object: %w", err)
	}
	return nil
}

func (store S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	t := time.Now()
	res, err := store.Service.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(store.Bucket),
		Key:    store.key(key),
	})
	store.observeRequestDuration(t, metricGetObject)
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blobstore: unable to get object: %w", err)
	}
	return res.Body, nil
}

// Delete removes the object. S3 does not report missing keys on deletion.
func (store S3Store) Delete(ctx context.Context, key string) error {
	t := time.Now()
	_, err := store.Service.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.Bucket),
		Key:    store.key(key),
	})
	store.observeRequestDuration(t, metricDeleteObject)
	if err != nil {
		return fmt.Errorf("blobstore: unable to delete object: %w", err)
	}
	return nil
}
