// Package redislocker provides a session locker backed by Redis, for
// deployments in which several processes serve the same sessions.
//
// The lock itself is a redsync mutex which is extended while it is held. A
// request waiting for a held lock publishes a release request on a channel
// the holder listens to and waits for the holder's release notification.
package redislocker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/FHNW/plone.restapi/pkg/handler"
)

// LockExchange passes release requests and notifications between the holder
// of a lock and the requests waiting for it.
type LockExchange interface {
	// Listen calls callback once a release is requested for id or returns
	// when ctx is done.
	Listen(ctx context.Context, id string, callback func())
	// Request asks the holder of id's lock to release it and waits until it
	// did so.
	Request(ctx context.Context, id string) error
	// Release announces that id's lock has been released.
	Release(ctx context.Context, id string) error
}

// MutexLock is the subset of *redsync.Mutex used by the locker.
type MutexLock interface {
	TryLockContext(context.Context) error
	ExtendContext(context.Context) (bool, error)
	UnlockContext(context.Context) (bool, error)
	Until() time.Time
}

type RedisLocker struct {
	CreateMutex func(id string) MutexLock
	Exchange    LockExchange
	Logger      *slog.Logger

	expiry time.Duration
}

// UseIn adds this locker to the passed composer.
func (locker *RedisLocker) UseIn(composer *handler.StoreComposer) {
	composer.UseLocker(locker)
}

func (locker *RedisLocker) NewLock(id string) (handler.Lock, error) {
	return &redisLock{
		id:       id,
		mutex:    locker.CreateMutex(id),
		exchange: locker.Exchange,
		logger:   locker.Logger.With("id", id),
	}, nil
}

type redisLock struct {
	id       string
	mutex    MutexLock
	exchange LockExchange
	logger   *slog.Logger

	// ctx lives as long as the lock is held.
	ctx    context.Context
	cancel context.CancelCauseFunc
}

func (l *redisLock) Lock(ctx context.Context, requestRelease func()) error {
	if err := l.acquire(ctx); err != nil {
		l.logger.Debug("LockRequestRelease")
		if err := l.exchange.Request(ctx, l.id); err != nil {
			return err
		}
		if err := l.acquire(ctx); err != nil {
			return err
		}
	}

	l.ctx, l.cancel = context.WithCancelCause(context.Background())

	go l.exchange.Listen(l.ctx, l.id, func() {
		l.logger.Debug("LockReleaseRequested")
		if requestRelease != nil {
			requestRelease()
		}
	})

	go func() {
		if err := l.keepAlive(l.ctx); err != nil {
			l.logger.Error("LockExtendError", "error", err)
			l.cancel(err)
			if requestRelease != nil {
				requestRelease()
			}
		}
	}()

	l.logger.Debug("LockAcquired")
	return nil
}

func (l *redisLock) acquire(ctx context.Context) error {
	if err := l.mutex.TryLockContext(ctx); err != nil {
		// The mutex is held by somebody else or Redis is unavailable. Both
		// are reported as a locked session to the client.
		return errors.Join(err, handler.ErrFileLocked)
	}
	return nil
}

// keepAlive extends the mutex at half of its remaining lifetime until ctx
// is done.
func (l *redisLock) keepAlive(ctx context.Context) error {
	for {
		select {
		case <-time.After(time.Until(l.mutex.Until()) / 2):
			if _, err := l.mutex.ExtendContext(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("redislocker: failed to extend lock: %w", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *redisLock) Unlock() error {
	if l.cancel == nil {
		return nil
	}
	l.cancel(nil)
	l.cancel = nil

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var err error
	if ok, unlockErr := l.mutex.UnlockContext(ctx); !ok {
		err = errors.Join(unlockErr, fmt.Errorf("redislocker: lock for %s was not held anymore", l.id))
	}

	if releaseErr := l.exchange.Release(ctx, l.id); releaseErr != nil {
		err = errors.Join(err, releaseErr)
	}

	if err != nil {
		l.logger.Error("LockReleaseError", "error", err)
	}
	l.logger.Debug("LockReleased")
	return err
}
