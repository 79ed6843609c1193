// Package filelocker provides a session locker based on the local file system.
//
// Locks are lock files next to the session files, each storing the PID of the
// process which acquired it. A lock held by a process which is no longer alive
// is taken over automatically. This allows several processes to share one
// session directory.
//
// If somebody tries to acquire a lock that is already held, a `.stop` file is
// created next to the lock file. The holder regularly checks whether this file
// exists and, if so, invokes the `requestRelease` callback it passed to Lock,
// so that the running request stops and unlocks.
package filelocker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/tus/lockfile"

	"github.com/FHNW/plone.restapi/pkg/handler"
	"github.com/FHNW/plone.restapi/pkg/sessionstore"
)

// FileLocker creates lock files in a directory.
type FileLocker struct {
	// Path is the directory the lock files are stored in. Usually this is the
	// session directory. FileLocker does not create it.
	Path string

	// HolderPollInterval specifies how often the holder of a lock checks
	// whether it should release the lock. Defaults to 1 second.
	HolderPollInterval time.Duration

	// AcquirerPollInterval specifies how often the acquirer of a lock checks
	// whether the lock has been released. The checks stop once the context
	// provided to Lock is done. Defaults to 500 milliseconds.
	AcquirerPollInterval time.Duration
}

// New creates a locker storing its lock files in path.
func New(path string) FileLocker {
	return FileLocker{
		Path:                 path,
		HolderPollInterval:   time.Second,
		AcquirerPollInterval: 500 * time.Millisecond,
	}
}

// UseIn adds this locker to the passed composer.
func (locker FileLocker) UseIn(composer *handler.StoreComposer) {
	composer.UseLocker(locker)
}

func (locker FileLocker) NewLock(id string) (handler.Lock, error) {
	name := sessionstore.FilePrefix + id
	path, err := filepath.Abs(filepath.Join(locker.Path, name+".lock"))
	if err != nil {
		return nil, err
	}

	holderPoll := locker.HolderPollInterval
	if holderPoll <= 0 {
		holderPoll = time.Second
	}
	acquirerPoll := locker.AcquirerPollInterval
	if acquirerPoll <= 0 {
		acquirerPoll = 500 * time.Millisecond
	}

	// Lockfile is used directly instead of lockfile.New since the path has
	// already been made absolute.
	return &fileLock{
		file:               lockfile.Lockfile(path),
		requestReleaseFile: filepath.Join(locker.Path, name+".stop"),
		holderPoll:         holderPoll,
		acquirerPoll:       acquirerPoll,
	}, nil
}

type fileLock struct {
	file               lockfile.Lockfile
	requestReleaseFile string
	holderPoll         time.Duration
	acquirerPoll       time.Duration

	// stop is closed to end the holder's watch. It is nil while the lock
	// is not held.
	stop chan struct{}
}

func (lock *fileLock) Lock(ctx context.Context, requestRelease func()) error {
	for {
		err := lock.file.TryLock()
		if err == nil {
			break
		}
		if !errors.Is(err, lockfile.ErrBusy) {
			return err
		}

		// Ask the holder to release the lock.
		file, err := os.Create(lock.requestReleaseFile)
		if err != nil {
			return err
		}
		file.Close()

		select {
		case <-ctx.Done():
			return handler.ErrLockTimeout
		case <-time.After(lock.acquirerPoll):
		}
	}

	// A stale request from a previous holder must not interrupt us.
	_ = os.Remove(lock.requestReleaseFile)

	lock.stop = make(chan struct{})
	go lock.watch(lock.stop, requestRelease)

	return nil
}

// watch invokes requestRelease once the .stop file appears.
func (lock *fileLock) watch(stop <-chan struct{}, requestRelease func()) {
	ticker := time.NewTicker(lock.holderPoll)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := os.Stat(lock.requestReleaseFile); err == nil {
				if requestRelease != nil {
					requestRelease()
				}
				return
			}
		}
	}
}

// Unlock removes the lock file. A lock which has not been acquired is left
// alone, so that it does not remove somebody else's lock file.
func (lock *fileLock) Unlock() error {
	if lock.stop == nil {
		return nil
	}
	close(lock.stop)
	lock.stop = nil

	err := lock.file.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}

	_ = os.Remove(lock.requestReleaseFile)

	return err
}
