package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/kvstore"
)

var (
	// ErrIssuanceLocked is returned while the verification lock is active.
	ErrIssuanceLocked = errors.New("otp issuance blocked by verification lock")
	// ErrIssuanceSpamLocked is returned while the spam lock is active.
	ErrIssuanceSpamLocked = errors.New("otp issuance blocked by spam lock")
	// ErrIssuanceCooldown is returned while the resend cooldown is active.
	ErrIssuanceCooldown = errors.New("otp issuance on cooldown")
	// ErrIssuanceTooMany is returned when RecordAttempt trips the spam lock.
	ErrIssuanceTooMany = errors.New("too many otp requests")
	// ErrIssuanceUnavailable wraps store failures.
	ErrIssuanceUnavailable = errors.New("otp issuance limiter unavailable")
)

type IssuanceConfig struct {
	// MaxRequests is the number of issuances allowed per RequestWindow before
	// the next request sets the spam lock.
	MaxRequests   int
	RequestWindow time.Duration
	SpamLockTTL   time.Duration
}

// IssuanceLimiter gates OTP issuance per email.
type IssuanceLimiter struct {
	store  kvstore.Store
	config IssuanceConfig
}

func NewIssuanceLimiter(store kvstore.Store, cfg IssuanceConfig) *IssuanceLimiter {
	return &IssuanceLimiter{store: store, config: cfg}
}

// CheckAllowed fails if any of the lock, spam-lock or cooldown flags is set,
// checked in that order. It has no side effects.
func (l *IssuanceLimiter) CheckAllowed(ctx context.Context, email string) error {
	if l == nil {
		return nil
	}

	gates := []struct {
		key string
		err error
	}{
		{keys.Lock(email), ErrIssuanceLocked},
		{keys.SpamLock(email), ErrIssuanceSpamLocked},
		{keys.Cooldown(email), ErrIssuanceCooldown},
	}
	for _, g := range gates {
		ok, err := l.store.Exists(ctx, g.key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIssuanceUnavailable, err)
		}
		if ok {
			return g.err
		}
	}
	return nil
}

// RecordAttempt counts one issuance request. Once MaxRequests have been
// counted within the window, it sets the spam lock and fails instead.
func (l *IssuanceLimiter) RecordAttempt(ctx context.Context, email string) error {
	if l == nil {
		return nil
	}

	count, err := kvstore.GetInt(ctx, l.store, keys.RequestCount(email))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIssuanceUnavailable, err)
	}

	if count >= int64(l.config.MaxRequests) {
		if err := l.store.Set(ctx, keys.SpamLock(email), "true", l.config.SpamLockTTL); err != nil {
			return fmt.Errorf("%w: %v", ErrIssuanceUnavailable, err)
		}
		return ErrIssuanceTooMany
	}

	if _, err := l.store.Incr(ctx, keys.RequestCount(email), l.config.RequestWindow); err != nil {
		return fmt.Errorf("%w: %v", ErrIssuanceUnavailable, err)
	}
	return nil
}
