package handler

import (
	"context"
	"io"
	"time"
)

type MetaData map[string]string

// SessionInfo contains information about a specific upload session.
type SessionInfo struct {
	// ID uniquely identifies an upload session. It is generated by the handler
	// when the session is created and used as the last path segment of the
	// session's URL.
	ID string
	// Length is the total size in bytes declared using the Upload-Length header.
	// It cannot be changed after the session has been created.
	Length int64
	// Offset in bytes (zero-based) which have been persisted so far.
	Offset int64
	// MetaData contains the decoded key/value pairs from the Upload-Metadata
	// header. Keys are lower-cased.
	MetaData MetaData
}

// IsComplete reports whether all declared bytes have been received.
func (info SessionInfo) IsComplete() bool {
	return info.Length > 0 && info.Offset >= info.Length
}

// Session represents an upload session in the data store. A Session value is an
// in-memory handle: implementations may cache the session's metadata for the
// lifetime of the handle.
type Session interface {
	// GetInfo returns the SessionInfo for this session.
	GetInfo(ctx context.Context) (SessionInfo, error)
	// Length returns the declared total length, or 0 if the session does not exist.
	Length(ctx context.Context) (int64, error)
	// Offset returns the number of bytes persisted so far.
	Offset(ctx context.Context) (int64, error)
	// MetaData returns the metadata supplied when the session was created.
	MetaData(ctx context.Context) (MetaData, error)
	// WriteChunk appends the content of src to the session. The offset must match
	// the number of bytes already persisted, otherwise ErrMismatchOffset is
	// returned and nothing is written.
	WriteChunk(ctx context.Context, offset int64, src io.Reader) (int64, error)
	// GetReader returns a reader for the bytes persisted so far. The caller is
	// responsible for closing it.
	GetReader(ctx context.Context) (io.ReadCloser, error)
	// ExpiresAt returns the point in time after which the session may be swept.
	ExpiresAt(ctx context.Context) (time.Time, error)
	// Discard removes all persisted state of the session. Discarding an already
	// removed session is not an error.
	Discard(ctx context.Context) error
}

// DataStore is the interface that must be implemented by a session store.
type DataStore interface {
	// NewSession creates a new session using the given information. info.ID is
	// set by the handler and must be respected.
	NewSession(ctx context.Context, info SessionInfo) (Session, error)
	// GetSession returns the session with the given ID. If the ID is unknown or
	// the session has a declared length of zero, ErrNotFound is returned.
	GetSession(ctx context.Context, id string) (Session, error)
}

// Finalizer turns a completed session into a content object. It is invoked
// synchronously by the PATCH handler once the offset reaches the declared length.
type Finalizer interface {
	// Finalize materializes the session's bytes below the content located at
	// parent and discards the session afterwards. The returned string is the
	// path of the new content object, relative to the site root.
	Finalize(ctx context.Context, parent string, session Session) (string, error)
}

// Locker is the interface required for custom lock persisting mechanisms.
// Common ways to store this information is in memory, on disk or using an
// external service, such as Redis.
// Two requests appending to the same session at the same time would interleave
// their writes into the same blob, so every HEAD and PATCH request holds the
// session's lock while it is being handled.
type Locker interface {
	// NewLock creates a new unlocked lock object for the given session ID.
	NewLock(id string) (Lock, error)
}

// Lock is the interface for a lock as returned from a Locker.
type Lock interface {
	// Lock attempts to obtain an exclusive lock for the session specified
	// by its id.
	// If the lock can be acquired, it will return without error. The requestUnlock
	// callback is invoked when another caller attempts to create a lock. In this
	// case, the holder of the lock should attempt to release the lock as soon
	// as possible.
	// If the context is cancelled before the lock can be acquired, ErrLockTimeout
	// will be returned without acquiring the lock.
	Lock(ctx context.Context, requestUnlock func()) error
	// Unlock releases an existing lock for the given session.
	Unlock() error
}
