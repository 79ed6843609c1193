// Package sessionstore provides the storage backend for upload sessions based
// on the local file system.
//
// Each session is represented by two files inside a single directory:
// `tus_upload_<id>` holds the raw bytes received so far and
// `tus_upload_<id>.json` holds the declared length and the client supplied
// metadata in JSON format. The byte file is only created by the first write,
// so a session's offset is the size of that file or zero if it is missing.
//
// Sessions which have not been touched for ExpirationPeriod are removed by
// SweepExpired. By default a sweep runs before each new session is created.
// Alternatively, a Sweeper can be started to sweep in the background.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/FHNW/plone.restapi/pkg/handler"
	"golang.org/x/exp/slog"
)

const (
	// FilePrefix is prepended to the session ID to form the names of the
	// session's files.
	FilePrefix = "tus_upload_"
	// MetadataSuffix is appended to the byte file's name to form the name of
	// the metadata sidecar.
	MetadataSuffix = ".json"

	// DefaultExpirationPeriod is the time after its last modification at which
	// a session expires.
	DefaultExpirationPeriod = time.Hour
)

var defaultFilePerm = os.FileMode(0664)
var defaultDirectoryPerm = os.FileMode(0754)

// IDs are generated by the handler, but GetSession receives them from the
// request path. Anything outside this alphabet cannot name a session.
var reValidID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store keeps upload sessions in a directory. See the handler.DataStore
// interface for documentation about the different methods.
type Store struct {
	// Path is the directory in which the session files are stored. It is
	// created on demand.
	Path string
	// FS is the file system the store operates on.
	FS FS
	// ExpirationPeriod defines how long a session may stay untouched before it
	// is swept.
	ExpirationPeriod time.Duration
	// SweepOnCreate controls whether expired sessions are removed before each
	// new session is created.
	SweepOnCreate bool
	// OnExpired is called with the number of sessions removed by every sweep
	// that removed at least one session. It may be nil.
	OnExpired func(n int)
	// Logger is used to report sweeping.
	Logger *slog.Logger

	now func() time.Time
}

// New creates a new file based session store. The directory specified will
// be used as the only storage entry.
func New(path string) Store {
	return Store{
		Path:             path,
		FS:               osFS{},
		ExpirationPeriod: DefaultExpirationPeriod,
		SweepOnCreate:    true,
		Logger:           slog.Default(),
		now:              time.Now,
	}
}

// NewRoot creates a new session store which keeps all files inside root.
// See https://go.dev/blog/osroot for more information.
func NewRoot(root *os.Root) Store {
	store := New("")
	store.FS = root
	return store
}

// UseIn sets this store as the core data store in the passed composer.
func (store Store) UseIn(composer *handler.StoreComposer) {
	composer.UseCore(store)
}

func (store Store) NewSession(ctx context.Context, info handler.SessionInfo) (handler.Session, error) {
	if !reValidID.MatchString(info.ID) {
		return nil, fmt.Errorf("sessionstore: invalid session id %q", info.ID)
	}

	if store.SweepOnCreate {
		if _, err := store.SweepExpired(ctx); err != nil {
			// A failed sweep must not prevent new sessions.
			store.logger().Warn("SweepError", "error", err)
		}
	}

	sess := store.newSession(info.ID)
	sess.file = &sessionFile{
		ID:       info.ID,
		Length:   info.Length,
		MetaData: info.MetaData,
	}
	if sess.file.MetaData == nil {
		sess.file.MetaData = make(handler.MetaData)
	}

	data, err := json.Marshal(sess.file)
	if err != nil {
		return nil, err
	}

	if err := createFile(store.FS, sess.metadataPath, data); err != nil {
		return nil, err
	}

	return sess, nil
}

func (store Store) GetSession(ctx context.Context, id string) (handler.Session, error) {
	if !reValidID.MatchString(id) {
		return nil, handler.ErrNotFound
	}

	sess := store.newSession(id)
	length, err := sess.Length(ctx)
	if err != nil {
		return nil, err
	}

	// Sessions with zero length cannot receive any bytes and are treated as
	// unknown until they are swept.
	if length == 0 {
		return nil, handler.ErrNotFound
	}

	return sess, nil
}

func (store Store) newSession(id string) *session {
	binPath := store.binPath(id)
	return &session{
		store:        store,
		id:           id,
		binPath:      binPath,
		metadataPath: binPath + MetadataSuffix,
	}
}

// binPath returns the path to the file storing the session's bytes.
func (store Store) binPath(id string) string {
	return filepath.Join(store.Path, FilePrefix+id)
}

func (store Store) dirPath() string {
	if store.Path == "" {
		return "."
	}
	return store.Path
}

func (store Store) expirationPeriod() time.Duration {
	if store.ExpirationPeriod <= 0 {
		return DefaultExpirationPeriod
	}
	return store.ExpirationPeriod
}

func (store Store) currentTime() time.Time {
	if store.now == nil {
		return time.Now()
	}
	return store.now()
}

func (store Store) logger() *slog.Logger {
	if store.Logger == nil {
		return slog.Default()
	}
	return store.Logger
}

// createFile creates the file with the content. If the corresponding directory does not exist,
// it is created. If the file already exists, its content is removed.
func createFile(fsys FS, path string, content []byte) error {
	file, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, defaultFilePerm)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}

		// The session directory is created lazily.
		if err := mkdirAll(fsys, filepath.Dir(path), defaultDirectoryPerm); err != nil {
			return fmt.Errorf("failed to create directory for %s: %s", path, err)
		}

		file, err = fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, defaultFilePerm)
		if err != nil {
			return err
		}
	}

	if content != nil {
		if _, err := file.Write(content); err != nil {
			file.Close()
			return err
		}
	}

	return file.Close()
}

func mkdirAll(fsys FS, dir string, perm os.FileMode) error {
	if dir == "" || dir == "." {
		return nil
	}

	if _, ok := fsys.(osFS); ok {
		return os.MkdirAll(dir, perm)
	}

	parts := strings.Split(dir, string(os.PathSeparator))
	for i := range parts {
		subDir := filepath.Join(parts[:i+1]...)
		if _, err := fsys.Stat(subDir); os.IsNotExist(err) {
			if err := fsys.Mkdir(subDir, perm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", subDir, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to check directory %s: %w", subDir, err)
		}
	}

	return nil
}

// readFile reads the named file using the store's file system.
func readFile(fsys FS, path string) ([]byte, error) {
	return fs.ReadFile(fsys.FS(), filepath.ToSlash(path))
}
