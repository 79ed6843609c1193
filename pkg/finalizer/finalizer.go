// Package finalizer turns completed upload sessions into content objects.
//
// The type of the new object is taken from the `@type` metadata key, or looked
// up in a TypeRegistry using the `filename` and `content-type` keys, falling
// back to File. The session's bytes are stored in the object's primary field
// according to the field's kind. Uploads into other fields than the primary
// one (`fieldname` metadata key) are not supported.
package finalizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/FHNW/plone.restapi/internal/semaphore"
	"github.com/FHNW/plone.restapi/pkg/handler"
	"golang.org/x/exp/slog"
)

const (
	// DefaultTypeName is used when neither the metadata nor the registry
	// determine a type.
	DefaultTypeName = "File"
	// DefaultContentType is assumed for uploads without a content type.
	DefaultContentType = "application/octet-stream"
)

var ErrInvalidText = errors.New("finalizer: upload is not valid UTF-8 text")

var _ handler.Finalizer = &Finalizer{}

// Finalizer implements handler.Finalizer on top of a Content repository.
type Finalizer struct {
	Content  Content
	Registry TypeRegistry
	Logger   *slog.Logger

	sem semaphore.Semaphore
}

// New creates a Finalizer. If maxConcurrent is positive, at most that many
// finalizations run at the same time and further ones wait for a free slot.
// registry may be nil.
func New(content Content, registry TypeRegistry, maxConcurrent int) *Finalizer {
	f := &Finalizer{
		Content:  content,
		Registry: registry,
		Logger:   slog.Default(),
	}
	if maxConcurrent > 0 {
		f.sem = semaphore.New(maxConcurrent)
	}
	return f
}

func (f *Finalizer) Finalize(ctx context.Context, parent string, session handler.Session) (string, error) {
	meta, err := session.MetaData(ctx)
	if err != nil {
		return "", err
	}

	if meta["fieldname"] != "" {
		return "", handler.ErrNotImplemented
	}

	if f.sem != nil {
		if err := f.sem.AcquireContext(ctx); err != nil {
			return "", err
		}
		defer f.sem.Release()
	}

	info, err := session.GetInfo(ctx)
	if err != nil {
		return "", err
	}

	filename := meta["filename"]
	contentType := meta["content-type"]
	if contentType == "" {
		contentType = DefaultContentType
	}
	typeName := f.typeName(meta, filename, contentType)

	obj, err := f.Content.Create(ctx, parent, typeName)
	if err != nil {
		return "", err
	}

	renamed, err := f.populate(ctx, obj, session, info, meta)
	if err != nil {
		if delErr := f.Content.Delete(ctx, obj); delErr != nil {
			f.logger().Error("ContentRollbackError", "id", info.ID, "path", obj.Path, "error", delErr)
		}
		return "", err
	}
	obj = renamed

	// The object exists at this point. Leftover files are removed by the
	// next sweep, so a failed discard does not fail the request.
	if err := session.Discard(ctx); err != nil {
		f.logger().Warn("SessionDiscardError", "id", info.ID, "error", err)
	}

	f.logger().Info("ContentCreated", "id", info.ID, "path", obj.Path, "type", obj.TypeName)

	return obj.Path, nil
}

func (f *Finalizer) typeName(meta handler.MetaData, filename string, contentType string) string {
	if typeName := meta["@type"]; typeName != "" {
		return typeName
	}

	if f.Registry != nil {
		if typeName := f.Registry.FindTypeName(strings.ToLower(filename), contentType); typeName != "" {
			return typeName
		}
	}

	return DefaultTypeName
}

// populate fills the primary field of the freshly created obj and gives it
// its final id.
func (f *Finalizer) populate(ctx context.Context, obj Object, session handler.Session, info handler.SessionInfo, meta handler.MetaData) (Object, error) {
	if err := f.fill(ctx, obj, session, info, meta); err != nil {
		return Object{}, err
	}
	return f.Content.Rename(ctx, obj)
}

// fill stores the session's bytes in the primary field of obj.
func (f *Finalizer) fill(ctx context.Context, obj Object, session handler.Session, info handler.SessionInfo, meta handler.MetaData) error {
	field, err := f.Content.PrimaryField(ctx, obj)
	if err != nil {
		return err
	}

	switch field.Kind {
	case FieldRichText:
		return f.withReader(ctx, session, func(reader io.Reader) error {
			data, err := io.ReadAll(reader)
			if err != nil {
				return err
			}
			if !utf8.Valid(data) {
				return ErrInvalidText
			}

			mimeType := meta["content-type"]
			if mimeType == "" {
				mimeType = field.DefaultMimeType
			}

			return f.Content.SetRichText(ctx, obj, field, RichText{
				Raw:            string(data),
				MimeType:       mimeType,
				OutputMimeType: field.OutputMimeType,
			})
		})
	case FieldNamedBinary:
		return f.withReader(ctx, session, func(reader io.Reader) error {
			return f.Content.SetFile(ctx, obj, field, newBlob(reader, info, meta))
		})
	case FieldLegacyMutator:
		return f.withReader(ctx, session, func(reader io.Reader) error {
			return f.Content.Mutate(ctx, obj, field, newBlob(reader, info, meta))
		})
	case FieldNone, FieldUnsupported:
		return handler.ErrNotImplemented
	default:
		return fmt.Errorf("finalizer: unknown field kind %s for %s", field.Kind, obj.TypeName)
	}
}

func (f *Finalizer) withReader(ctx context.Context, session handler.Session, fn func(io.Reader) error) error {
	reader, err := session.GetReader(ctx)
	if err != nil {
		return err
	}

	if err := fn(reader); err != nil {
		reader.Close()
		return err
	}

	return reader.Close()
}

func newBlob(reader io.Reader, info handler.SessionInfo, meta handler.MetaData) Blob {
	contentType := meta["content-type"]
	if contentType == "" {
		contentType = DefaultContentType
	}

	return Blob{
		Reader:      reader,
		Size:        info.Offset,
		Filename:    meta["filename"],
		ContentType: contentType,
	}
}

func (f *Finalizer) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}
