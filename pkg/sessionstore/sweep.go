package sessionstore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// SweepExpired removes all sessions whose byte file (or, if no bytes have been
// received, whose metadata sidecar) has not been modified within the
// expiration period. It returns the number of removed sessions. Files which
// vanish while sweeping are skipped.
func (store Store) SweepExpired(ctx context.Context) (int, error) {
	entries, err := fs.ReadDir(store.FS.FS(), filepath.ToSlash(store.dirPath()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	now := store.currentTime()
	period := store.expirationPeriod()
	removed := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, MetadataSuffix) {
			continue
		}

		id := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), MetadataSuffix)
		sess := store.newSession(id)

		mtime, err := store.lastModified(sess)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, err
		}

		if now.Sub(mtime) <= period {
			continue
		}

		if err := sess.Discard(ctx); err != nil {
			return removed, err
		}

		store.logger().Info("SessionExpired", "id", id, "lastModified", mtime)
		removed++
	}

	if removed > 0 && store.OnExpired != nil {
		store.OnExpired(removed)
	}

	return removed, nil
}

func (store Store) lastModified(sess *session) (time.Time, error) {
	stat, err := store.FS.Stat(sess.binPath)
	if err == nil {
		return stat.ModTime(), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, err
	}

	stat, err = store.FS.Stat(sess.metadataPath)
	if err != nil {
		return time.Time{}, err
	}
	return stat.ModTime(), nil
}

// Sweeper periodically removes expired sessions from a Store. It is an
// alternative to sweeping on creation for deployments with little traffic.
type Sweeper struct {
	Store    Store
	Interval time.Duration
}

// Run sweeps once per Interval until ctx is cancelled. Sweep errors are
// logged and do not stop the loop.
func (s Sweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = s.Store.expirationPeriod() / 4
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Store.SweepExpired(ctx); err != nil && ctx.Err() == nil {
				s.Store.logger().Error("SweepError", "error", err)
			}
		}
	}
}
