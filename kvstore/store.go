package kvstore

import (
	"context"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key is absent or expired.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrUnavailable wraps backend failures (network, timeout, protocol).
	ErrUnavailable = errors.New("kvstore: backend unavailable")
	// ErrInvalidTTL is returned when a write is attempted without a positive TTL.
	ErrInvalidTTL = errors.New("kvstore: ttl must be positive")
)

// Store is the ephemeral store contract. All operations are single-key except
// Del, which removes every given key in one call. There are no cross-key
// transactions.
type Store interface {
	// Get returns the value stored at key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
	// Set stores value at key, replacing any previous value and TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Incr increments the integer at key (missing counts as 0) and applies ttl
	// to the key after the increment. It returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Del removes the given keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error
}

// GetInt reads key as a base-10 integer. A missing key yields 0.
func GetInt(ctx context.Context, s Store, key string) (int64, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return parseInt(raw), nil
}

// parseInt treats malformed counters as zero. Counters are only ever written
// through Incr, so a non-numeric value means the key was clobbered externally.
func parseInt(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
