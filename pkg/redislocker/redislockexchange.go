package redislocker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/FHNW/plone.restapi/pkg/handler"
)

var (
	// DefaultLockExchangeChannelTemplate is the channel on which release
	// requests for a session are published. %s is replaced with the session ID.
	DefaultLockExchangeChannelTemplate = "plone_upload_release_request_%s"

	// DefaultLockReleaseChannelTemplate is the channel on which the holder
	// announces that it released a session's lock.
	DefaultLockReleaseChannelTemplate = "plone_upload_released_%s"
)

// RedisLockExchange implements LockExchange using Redis pub/sub.
type RedisLockExchange struct {
	Client redis.UniversalClient

	// LockExchangeChannelTemplate overrides DefaultLockExchangeChannelTemplate.
	LockExchangeChannelTemplate string
	// LockReleaseChannelTemplate overrides DefaultLockReleaseChannelTemplate.
	LockReleaseChannelTemplate string
}

func (e *RedisLockExchange) lockExchangeChannel(id string) string {
	template := e.LockExchangeChannelTemplate
	if template == "" {
		template = DefaultLockExchangeChannelTemplate
	}
	return fmt.Sprintf(template, id)
}

func (e *RedisLockExchange) lockReleaseChannel(id string) string {
	template := e.LockReleaseChannelTemplate
	if template == "" {
		template = DefaultLockReleaseChannelTemplate
	}
	return fmt.Sprintf(template, id)
}

func (e *RedisLockExchange) Listen(ctx context.Context, id string, callback func()) {
	sub := e.Client.Subscribe(ctx, e.lockExchangeChannel(id))
	defer sub.Close()

	select {
	case <-sub.Channel():
		callback()
	case <-ctx.Done():
	}
}

// Request subscribes to the release channel before publishing the request,
// so that the holder's notification cannot be missed.
func (e *RedisLockExchange) Request(ctx context.Context, id string) error {
	sub := e.Client.Subscribe(ctx, e.lockReleaseChannel(id))
	defer sub.Close()

	// Wait for the subscription to be confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	if err := e.Client.Publish(ctx, e.lockExchangeChannel(id), id).Err(); err != nil {
		return err
	}

	select {
	case <-sub.Channel():
		return nil
	case <-ctx.Done():
		return handler.ErrLockTimeout
	}
}

func (e *RedisLockExchange) Release(ctx context.Context, id string) error {
	return e.Client.Publish(ctx, e.lockReleaseChannel(id), id).Err()
}
