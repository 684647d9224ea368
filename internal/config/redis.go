package config

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRedisURL      = errors.New("failed to parse redis connection string")
	ErrRedisNotReady = errors.New("redis is not ready")
)

// ConnectRedis dials REDIS_URL and pings until it answers or the attempts
// run out.
func (c Config) ConnectRedis(ctx context.Context) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Redis.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(c.Redis.URL)
	if err != nil {
		return nil, errors.Join(ErrRedisURL, err)
	}

	var lastErr error
	for range max(c.Redis.RetryAttempts, 1) {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(c.Redis.RetryInterval):
		}
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}
