// Package s3log provides a logging wrapper for the S3 calls of the blob store.
package s3log

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/FHNW/plone.restapi/pkg/content/blobstore"
)

var _ blobstore.S3API = &loggingS3API{}

type loggingS3API struct {
	// Wrapped is the underlying blobstore.S3API implementation
	Wrapped blobstore.S3API
	Logger  *slog.Logger
}

// New creates a wrapper around the provided S3 API that logs all calls to `logger`
func New(wrapped blobstore.S3API, logger *slog.Logger) blobstore.S3API {
	return &loggingS3API{
		Wrapped: wrapped,
		Logger:  logger,
	}
}

// sanitizeForLogging drops the object bodies, which must never end up in
// the logs.
func sanitizeForLogging(v interface{}) interface{} {
	switch input := v.(type) {
	case *s3.PutObjectInput:
		sanitized := *input
		sanitized.Body = nil
		return sanitized
	case *s3.GetObjectOutput:
		if input == nil {
			return nil
		}
		sanitized := *input
		sanitized.Body = nil
		return sanitized
	default:
		return v
	}
}

func jsonEncode(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("{\"error\":\"failed to marshal: %v\"}", err)
	}

	return string(data)
}

func (l *loggingS3API) logCall(operation string, input, output interface{}, err error, duration time.Duration) {
	attrs := []any{
		"operation", operation,
		"input", jsonEncode(sanitizeForLogging(input)),
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
	} else {
		attrs = append(attrs, "output", jsonEncode(sanitizeForLogging(output)))
	}

	l.Logger.Debug("S3APICall", attrs...)
}

func (l *loggingS3API) PutObject(ctx context.Context, input *s3.PutObjectInput, opt ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	start := time.Now()
	output, err := l.Wrapped.PutObject(ctx, input, opt...)
	l.logCall("PutObject", input, output, err, time.Since(start))
	return output, err
}

func (l *loggingS3API) GetObject(ctx context.Context, input *s3.GetObjectInput, opt ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	start := time.Now()
	output, err := l.Wrapped.GetObject(ctx, input, opt...)
	l.logCall("GetObject", input, output, err, time.Since(start))
	return output, err
}

func (l *loggingS3API) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opt ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	start := time.Now()
	output, err := l.Wrapped.DeleteObject(ctx, input, opt...)
	l.logCall("DeleteObject", input, output, err, time.Since(start))
	return output, err
}
