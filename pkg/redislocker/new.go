package redislocker

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

// DefaultLockExpiry is the time after which a lock whose holder stopped
// extending it is considered abandoned.
const DefaultLockExpiry = 8 * time.Second

// DefaultKeyPrefix is prepended to session IDs to build the mutex keys.
const DefaultKeyPrefix = "plone_upload_lock_"

type LockerOption func(l *RedisLocker)

// WithLogger sets the logger used for lock diagnostics.
func WithLogger(logger *slog.Logger) LockerOption {
	return func(l *RedisLocker) {
		l.Logger = logger
	}
}

// WithLockExpiry overrides DefaultLockExpiry.
func WithLockExpiry(expiry time.Duration) LockerOption {
	return func(l *RedisLocker) {
		l.expiry = expiry
	}
}

// NewFromClient creates a locker using an existing Redis client.
func NewFromClient(client redis.UniversalClient, lockerOptions ...LockerOption) *RedisLocker {
	locker := &RedisLocker{
		Exchange: &RedisLockExchange{
			Client: client,
		},
		Logger: slog.Default(),
		expiry: DefaultLockExpiry,
	}
	for _, option := range lockerOptions {
		option(locker)
	}

	rs := redsync.New(goredis.NewPool(client))
	expiry := locker.expiry
	locker.CreateMutex = func(id string) MutexLock {
		// A single try: waiting is done through the exchange, not by
		// polling the mutex.
		return rs.NewMutex(DefaultKeyPrefix+id, redsync.WithExpiry(expiry), redsync.WithTries(1))
	}

	return locker
}

// New connects to the Redis server at uri, e.g. redis://localhost:6379/0,
// and creates a locker using it.
func New(ctx context.Context, uri string, lockerOptions ...LockerOption) (*RedisLocker, error) {
	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewFromClient(client, lockerOptions...), nil
}
