package finalizer

import (
	"context"
	"io"
)

// FieldKind classifies the primary field of a content type. The set is closed:
// Finalize handles every kind in a single switch.
type FieldKind int

const (
	// FieldNone means the type has no primary field, so an upload cannot
	// be stored in it.
	FieldNone FieldKind = iota
	// FieldRichText holds text with a source and an output mime type.
	FieldRichText
	// FieldNamedBinary holds a blob together with its filename and content type.
	FieldNamedBinary
	// FieldLegacyMutator is written through the type's own setter which
	// receives the raw stream.
	FieldLegacyMutator
	// FieldUnsupported is a primary field which cannot be filled from an upload.
	FieldUnsupported
)

func (k FieldKind) String() string {
	switch k {
	case FieldNone:
		return "none"
	case FieldRichText:
		return "richtext"
	case FieldNamedBinary:
		return "namedbinary"
	case FieldLegacyMutator:
		return "legacymutator"
	case FieldUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// Field describes the primary field of a content object.
type Field struct {
	Name string
	Kind FieldKind
	// DefaultMimeType is used for rich text when the upload carries no
	// content type.
	DefaultMimeType string
	// OutputMimeType is the mime type rich text is rendered to.
	OutputMimeType string
}

// Object is a reference to a content object.
type Object struct {
	// ID is the last path segment of the object.
	ID string
	// Path is the object's path relative to the site root.
	Path string
	// TypeName is the portal type of the object, e.g. File.
	TypeName string
}

// RichText is the value stored in a FieldRichText field.
type RichText struct {
	Raw            string
	MimeType       string
	OutputMimeType string
}

// Blob is the value stored in FieldNamedBinary and FieldLegacyMutator fields.
type Blob struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

// Content is the content repository the uploaded data is materialized into.
type Content interface {
	// Create adds a new object of the given type below parent, using a
	// temporary id.
	Create(ctx context.Context, parent string, typeName string) (Object, error)
	// PrimaryField returns the primary field of obj.
	PrimaryField(ctx context.Context, obj Object) (Field, error)
	// SetRichText stores text in a FieldRichText field.
	SetRichText(ctx context.Context, obj Object, field Field, text RichText) error
	// SetFile stores a blob in a FieldNamedBinary field.
	SetFile(ctx context.Context, obj Object, field Field, blob Blob) error
	// Mutate passes a blob to the setter of a FieldLegacyMutator field.
	Mutate(ctx context.Context, obj Object, field Field, blob Blob) error
	// Rename replaces the temporary id by a normalized, unique one.
	Rename(ctx context.Context, obj Object) (Object, error)
	// Delete removes obj. It is used to roll back failed finalizations.
	Delete(ctx context.Context, obj Object) error
}

// TypeRegistry maps a filename and a content type to a portal type.
type TypeRegistry interface {
	// FindTypeName returns the matching type name or an empty string.
	FindTypeName(filename string, contentType string) string
}
