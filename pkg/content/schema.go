package content

import (
	"path"

	"github.com/FHNW/plone.restapi/pkg/finalizer"
)

// DefaultTypes is the schema of the content types known to a fresh
// repository, keyed by type name.
var DefaultTypes = map[string]finalizer.Field{
	"Folder": {Kind: finalizer.FieldNone},
	"File":   {Name: "file", Kind: finalizer.FieldNamedBinary},
	"Image":  {Name: "image", Kind: finalizer.FieldNamedBinary},
	"Document": {
		Name:            "text",
		Kind:            finalizer.FieldRichText,
		DefaultMimeType: "text/html",
		OutputMimeType:  "text/x-html-safe",
	},
	"LegacyFile": {Name: "file", Kind: finalizer.FieldLegacyMutator},
	"Link":       {Name: "remoteUrl", Kind: finalizer.FieldUnsupported},
}

// Rule maps uploads to a type name. A rule matches if its Extension glob
// matches the filename or its MimeType glob matches the content type. Empty
// globs never match.
type Rule struct {
	Name      string
	Extension string
	MimeType  string
	TypeName  string
}

func (r Rule) matches(filename string, contentType string) bool {
	if r.MimeType != "" {
		if ok, _ := path.Match(r.MimeType, contentType); ok {
			return true
		}
	}
	if r.Extension != "" && filename != "" {
		if ok, _ := path.Match(r.Extension, filename); ok {
			return true
		}
	}
	return false
}

// Registry is a finalizer.TypeRegistry evaluating its rules in order.
type Registry struct {
	Rules []Rule
}

// DefaultRegistry maps images to Image and HTML to Document.
var DefaultRegistry = Registry{
	Rules: []Rule{
		{Name: "image", MimeType: "image/*", TypeName: "Image"},
		{Name: "document", Extension: "*.html", MimeType: "text/html", TypeName: "Document"},
		{Name: "document-htm", Extension: "*.htm", TypeName: "Document"},
	},
}

var _ finalizer.TypeRegistry = Registry{}

// FindTypeName returns the type name of the first matching rule. filename
// is expected in lower case.
func (reg Registry) FindTypeName(filename string, contentType string) string {
	for _, rule := range reg.Rules {
		if rule.matches(filename, contentType) {
			return rule.TypeName
		}
	}
	return ""
}
