// Package memorylocker serializes requests for the same upload session
// within a single process.
//
// A PATCH request holds the lock of its session while it appends a chunk and,
// for the last chunk, while the session is finalized. A second request for
// the same session asks the holder to release the lock and waits until it is
// free, so that offsets are never read and written concurrently.
//
// Locks only live in memory. Deployments running several processes on a
// shared session directory must use filelocker or redislocker instead.
package memorylocker

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/FHNW/plone.restapi/pkg/handler"
)

// MemoryLocker hands out locks for session IDs.
type MemoryLocker struct {
	mutex    sync.Mutex
	sessions map[string]*sessionLock
}

// sessionLock guards one session. The entry is removed once the holder
// unlocks and nobody else waits for it.
type sessionLock struct {
	sem            *semaphore.Weighted
	requestRelease func()
	waiters        int
}

// New creates a new in-memory locker.
func New() *MemoryLocker {
	return &MemoryLocker{
		sessions: make(map[string]*sessionLock),
	}
}

// UseIn adds this locker to the passed composer.
func (locker *MemoryLocker) UseIn(composer *handler.StoreComposer) {
	composer.UseLocker(locker)
}

func (locker *MemoryLocker) NewLock(id string) (handler.Lock, error) {
	return &memoryLock{locker: locker, id: id}, nil
}

type memoryLock struct {
	locker *MemoryLocker
	id     string
	held   bool
}

// Lock obtains the exclusive lock for the session. If another request holds
// it, its release callback is invoked and Lock waits until ctx is done.
func (lock *memoryLock) Lock(ctx context.Context, requestRelease func()) error {
	locker := lock.locker

	locker.mutex.Lock()
	entry, ok := locker.sessions[lock.id]
	if !ok {
		entry = &sessionLock{sem: semaphore.NewWeighted(1)}
		locker.sessions[lock.id] = entry
	}
	entry.waiters++
	holderRelease := entry.requestRelease
	locker.mutex.Unlock()

	if !entry.sem.TryAcquire(1) {
		if holderRelease != nil {
			holderRelease()
		}

		if err := entry.sem.Acquire(ctx, 1); err != nil {
			locker.mutex.Lock()
			entry.waiters--
			locker.removeIfIdle(lock.id, entry)
			locker.mutex.Unlock()
			return handler.ErrLockTimeout
		}
	}

	locker.mutex.Lock()
	entry.waiters--
	entry.requestRelease = requestRelease
	locker.mutex.Unlock()

	lock.held = true
	return nil
}

// Unlock releases the lock. Unlocking a lock which is not held is a no-op.
func (lock *memoryLock) Unlock() error {
	if !lock.held {
		return nil
	}
	lock.held = false

	locker := lock.locker

	locker.mutex.Lock()
	entry := locker.sessions[lock.id]
	entry.requestRelease = nil
	entry.sem.Release(1)
	locker.removeIfIdle(lock.id, entry)
	locker.mutex.Unlock()

	return nil
}

// removeIfIdle drops the entry for id if no request holds or waits for it.
// The caller must hold locker.mutex.
func (locker *MemoryLocker) removeIfIdle(id string, entry *sessionLock) {
	if entry.waiters > 0 || entry.requestRelease != nil {
		return
	}
	if !entry.sem.TryAcquire(1) {
		return
	}
	entry.sem.Release(1)
	delete(locker.sessions, id)
}
