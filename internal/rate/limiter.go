package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config defines one fixed-window policy.
type Config struct {
	Limit  int
	Window time.Duration
	// Prefix namespaces the counters, e.g. "gw_ip:".
	Prefix string
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Limiter counts hits per key in Redis so that every gateway instance shares
// the same window.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Allow records one hit for key and reports whether it fits the window.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.config.Prefix + key

	count, err := l.incrementWithTTL(ctx, k, l.config.Window)
	if err != nil {
		return Decision{}, err
	}

	ttl, err := l.redis.PTTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl < 0 {
		ttl = l.config.Window
	}

	d := Decision{
		Allowed: count <= int64(l.config.Limit),
		Limit:   l.config.Limit,
		ResetIn: ttl,
	}
	if rem := int64(l.config.Limit) - count; rem > 0 {
		d.Remaining = int(rem)
	}
	return d, nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the TTL is set only by the first hit.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}
