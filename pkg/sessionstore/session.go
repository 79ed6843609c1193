package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/FHNW/plone.restapi/pkg/handler"
)

// sessionFile is the content of the metadata sidecar.
type sessionFile struct {
	ID       string           `json:"id"`
	Length   int64            `json:"length"`
	MetaData handler.MetaData `json:"metadata"`
}

type session struct {
	store Store
	id    string

	// binPath is the path to the file holding the received bytes
	binPath string
	// metadataPath is the path to the JSON sidecar
	metadataPath string

	// file caches the sidecar once it has been read successfully
	file *sessionFile
}

// load returns the sidecar's content. A missing or unreadable sidecar yields
// an empty record with zero length, which makes the session unusable.
func (s *session) load() (*sessionFile, error) {
	if s.file != nil {
		return s.file, nil
	}

	empty := &sessionFile{ID: s.id, MetaData: handler.MetaData{}}

	data, err := readFile(s.store.FS, s.metadataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, nil
		}
		return nil, err
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.store.logger().Warn("SessionMetadataInvalid", "id", s.id, "error", err)
		return empty, nil
	}
	if file.MetaData == nil {
		file.MetaData = handler.MetaData{}
	}

	s.file = &file
	return s.file, nil
}

func (s *session) GetInfo(ctx context.Context) (handler.SessionInfo, error) {
	file, err := s.load()
	if err != nil {
		return handler.SessionInfo{}, err
	}

	offset, err := s.Offset(ctx)
	if err != nil {
		return handler.SessionInfo{}, err
	}

	return handler.SessionInfo{
		ID:       s.id,
		Length:   file.Length,
		Offset:   offset,
		MetaData: file.MetaData,
	}, nil
}

func (s *session) Length(ctx context.Context) (int64, error) {
	file, err := s.load()
	if err != nil {
		return 0, err
	}
	return file.Length, nil
}

func (s *session) Offset(ctx context.Context) (int64, error) {
	stat, err := s.store.FS.Stat(s.binPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return stat.Size(), nil
}

func (s *session) MetaData(ctx context.Context) (handler.MetaData, error) {
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	return file.MetaData, nil
}

// WriteChunk appends src to the byte file. Bytes beyond the declared length
// are not written.
func (s *session) WriteChunk(ctx context.Context, offset int64, src io.Reader) (int64, error) {
	current, err := s.Offset(ctx)
	if err != nil {
		return 0, err
	}
	if offset != current {
		return 0, handler.ErrMismatchOffset
	}

	length, err := s.Length(ctx)
	if err != nil {
		return 0, err
	}
	if remaining := length - offset; remaining >= 0 {
		src = io.LimitReader(src, remaining)
	}

	file, err := s.store.FS.OpenFile(s.binPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFilePerm)
	if err != nil {
		return 0, err
	}
	// No deferred Close, so errors from closing the file are not lost.

	n, err := io.Copy(file, src)
	if err != nil {
		file.Close()
		return n, err
	}

	return n, file.Close()
}

func (s *session) GetReader(ctx context.Context) (io.ReadCloser, error) {
	file, err := s.store.FS.Open(s.binPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing has been written yet.
			return io.NopCloser(strings.NewReader("")), nil
		}
		return nil, err
	}
	return file, nil
}

// ExpiresAt returns the modification time of the byte file plus the
// expiration period. Sessions without bytes expire one period from now.
func (s *session) ExpiresAt(ctx context.Context) (time.Time, error) {
	period := s.store.expirationPeriod()

	stat, err := s.store.FS.Stat(s.binPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s.store.currentTime().Add(period), nil
		}
		return time.Time{}, err
	}

	return stat.ModTime().Add(period), nil
}

// Discard removes both files of the session. Files which are already gone
// are ignored, since a sweep may have removed them concurrently.
func (s *session) Discard(ctx context.Context) error {
	err := s.store.FS.Remove(s.binPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	err = s.store.FS.Remove(s.metadataPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	s.file = nil
	return nil
}
