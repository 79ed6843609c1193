// Package content is a SQL-backed content repository which the finalizer
// materializes completed uploads into.
//
// Every object is a row addressed by its path below the site root. Binary
// field values live in a blobstore.Store and the row only keeps their key.
// The site root itself has the empty path and always exists.
package content

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/exp/slog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/FHNW/plone.restapi/internal/uid"
	"github.com/FHNW/plone.restapi/pkg/content/blobstore"
	"github.com/FHNW/plone.restapi/pkg/finalizer"
	"github.com/FHNW/plone.restapi/pkg/handler"
)

var ErrUnknownType = errors.New("content: unknown type")

// Item is the database row of a content object.
type Item struct {
	ID       uint   `gorm:"primaryKey"`
	Path     string `gorm:"uniqueIndex;not null"`
	Parent   string `gorm:"index;not null"`
	Name     string `gorm:"not null"`
	TypeName string `gorm:"not null"`

	// Rich text fields
	Text               string
	TextMimeType       string
	TextOutputMimeType string

	// Binary fields
	BlobKey     string
	Filename    string
	ContentType string
	Size        int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (item Item) object() finalizer.Object {
	return finalizer.Object{
		ID:       item.Name,
		Path:     item.Path,
		TypeName: item.TypeName,
	}
}

var _ finalizer.Content = &Repository{}

// Repository implements finalizer.Content.
type Repository struct {
	DB    *gorm.DB
	Blobs blobstore.Store
	// Types maps type names to their primary field.
	Types  map[string]finalizer.Field
	Logger *slog.Logger

	now func() time.Time
}

// Open connects to the database described by dsn. postgres:// and
// postgresql:// URLs use PostgreSQL, everything else is a SQLite file name.
func Open(dsn string, blobs blobstore.Store, log *slog.Logger) (*Repository, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	if log == nil {
		log = slog.Default()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(log.Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("content: failed to connect to database: %w", err)
	}

	repo, err := New(db, blobs)
	if err != nil {
		return nil, err
	}
	repo.Logger = log
	return repo, nil
}

// New creates a repository on db using DefaultTypes and migrates its schema.
func New(db *gorm.DB, blobs blobstore.Store) (*Repository, error) {
	if err := db.AutoMigrate(&Item{}); err != nil {
		return nil, fmt.Errorf("content: failed to migrate: %w", err)
	}

	return &Repository{
		DB:     db,
		Blobs:  blobs,
		Types:  DefaultTypes,
		Logger: slog.Default(),
		now:    time.Now,
	}, nil
}

// Close closes the database connection.
func (repo *Repository) Close() error {
	sqlDB, err := repo.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the row of the object at p.
func (repo *Repository) Get(ctx context.Context, p string) (Item, error) {
	var item Item
	err := repo.DB.WithContext(ctx).Where("path = ?", p).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, handler.ErrNotFound
	}
	return item, err
}

func (repo *Repository) exists(ctx context.Context, db *gorm.DB, p string) (bool, error) {
	if p == "" {
		return true, nil
	}
	var count int64
	err := db.WithContext(ctx).Model(&Item{}).Where("path = ?", p).Count(&count).Error
	return count > 0, err
}

func (repo *Repository) insert(ctx context.Context, parent string, name string, typeName string) (Item, error) {
	if _, ok := repo.Types[typeName]; !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	ok, err := repo.exists(ctx, repo.DB, parent)
	if err != nil {
		return Item{}, err
	}
	if !ok {
		return Item{}, handler.ErrNotFound
	}

	item := Item{
		Path:     path.Join(parent, name),
		Parent:   parent,
		Name:     name,
		TypeName: typeName,
	}
	if err := repo.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return Item{}, err
	}
	return item, nil
}

// CreateFolder adds a folder called name below parent. An existing folder
// is returned unchanged.
func (repo *Repository) CreateFolder(ctx context.Context, parent string, name string) (finalizer.Object, error) {
	item, err := repo.Get(ctx, path.Join(parent, name))
	if err == nil {
		return item.object(), nil
	}
	if !errors.Is(err, handler.ErrNotFound) {
		return finalizer.Object{}, err
	}

	item, err = repo.insert(ctx, parent, name, "Folder")
	return item.object(), err
}

// Create adds an object with a temporary id of the form
// <type>.<date>.<random>, which Rename replaces later.
func (repo *Repository) Create(ctx context.Context, parent string, typeName string) (finalizer.Object, error) {
	name := fmt.Sprintf("%s.%s.%s", strings.ToLower(typeName), repo.now().Format("2006-01-02"), uid.Uid()[:10])

	item, err := repo.insert(ctx, parent, name, typeName)
	if err != nil {
		return finalizer.Object{}, err
	}

	repo.Logger.Debug("ContentObjectCreated", "path", item.Path, "type", typeName)
	return item.object(), nil
}

func (repo *Repository) PrimaryField(ctx context.Context, obj finalizer.Object) (finalizer.Field, error) {
	field, ok := repo.Types[obj.TypeName]
	if !ok {
		return finalizer.Field{}, fmt.Errorf("%w: %s", ErrUnknownType, obj.TypeName)
	}
	return field, nil
}

func (repo *Repository) update(ctx context.Context, obj finalizer.Object, values map[string]interface{}) error {
	res := repo.DB.WithContext(ctx).Model(&Item{}).Where("path = ?", obj.Path).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return handler.ErrNotFound
	}
	return nil
}

func (repo *Repository) SetRichText(ctx context.Context, obj finalizer.Object, field finalizer.Field, text finalizer.RichText) error {
	return repo.update(ctx, obj, map[string]interface{}{
		"text":                  text.Raw,
		"text_mime_type":        text.MimeType,
		"text_output_mime_type": text.OutputMimeType,
	})
}

func (repo *Repository) SetFile(ctx context.Context, obj finalizer.Object, field finalizer.Field, blob finalizer.Blob) error {
	return repo.storeBlob(ctx, obj, blob)
}

// Mutate stores the blob like SetFile.
func (repo *Repository) Mutate(ctx context.Context, obj finalizer.Object, field finalizer.Field, blob finalizer.Blob) error {
	repo.Logger.Debug("ContentLegacyMutator", "path", obj.Path, "field", field.Name)
	return repo.storeBlob(ctx, obj, blob)
}

func (repo *Repository) storeBlob(ctx context.Context, obj finalizer.Object, blob finalizer.Blob) error {
	item, err := repo.Get(ctx, obj.Path)
	if err != nil {
		return err
	}

	key := uid.Uid()
	if err := repo.Blobs.Put(ctx, key, blob.Reader, blob.Size, blob.ContentType); err != nil {
		return err
	}

	err = repo.update(ctx, obj, map[string]interface{}{
		"blob_key":     key,
		"filename":     blob.Filename,
		"content_type": blob.ContentType,
		"size":         blob.Size,
	})
	if err != nil {
		if delErr := repo.Blobs.Delete(ctx, key); delErr != nil {
			repo.Logger.Error("BlobDeleteError", "key", key, "error", delErr)
		}
		return err
	}

	if item.BlobKey != "" {
		if err := repo.Blobs.Delete(ctx, item.BlobKey); err != nil {
			repo.Logger.Error("BlobDeleteError", "key", item.BlobKey, "error", err)
		}
	}

	return nil
}

// Rename gives obj an id derived from its filename, or from its type if
// it has none. A numeric suffix keeps the id unique within the parent.
func (repo *Repository) Rename(ctx context.Context, obj finalizer.Object) (finalizer.Object, error) {
	var renamed Item

	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item Item
		if err := tx.Where("path = ?", obj.Path).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return handler.ErrNotFound
			}
			return err
		}

		base := normalizeName(item.Filename)
		if base == "" {
			base = normalizeName(item.TypeName)
		}

		name := base
		for i := 1; ; i++ {
			if name == item.Name {
				break
			}
			taken, err := repo.exists(ctx, tx, path.Join(item.Parent, name))
			if err != nil {
				return err
			}
			if !taken {
				break
			}
			name = suffixName(base, i)
		}

		item.Name = name
		item.Path = path.Join(item.Parent, name)
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		renamed = item
		return nil
	})
	if err != nil {
		return finalizer.Object{}, err
	}

	return renamed.object(), nil
}

// Delete removes obj and its blob. Children are not supported, since
// uploads never create folders.
func (repo *Repository) Delete(ctx context.Context, obj finalizer.Object) error {
	item, err := repo.Get(ctx, obj.Path)
	if err != nil {
		return err
	}

	if err := repo.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		return err
	}

	if item.BlobKey != "" {
		return repo.Blobs.Delete(ctx, item.BlobKey)
	}
	return nil
}

// normalizeName turns s into an id. Every dot separated segment is slugged
// on its own so the extension survives, and empty segments are dropped.
func normalizeName(s string) string {
	segments := make([]string, 0, strings.Count(s, ".")+1)
	for _, segment := range strings.Split(s, ".") {
		if segment = slug.Make(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	return strings.Join(segments, ".")
}

// suffixName inserts -i before the extension of base.
func suffixName(base string, i int) string {
	ext := path.Ext(base)
	if ext == base {
		ext = ""
	}
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), i, ext)
}
