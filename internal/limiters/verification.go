package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/kvstore"
)

// ErrVerificationLockoutUnavailable wraps store failures.
var ErrVerificationLockoutUnavailable = errors.New("verification lockout unavailable")

type VerificationConfig struct {
	// MaxFailures is the number of wrong submissions that exhaust the budget.
	MaxFailures int
	AttemptsTTL time.Duration
	LockTTL     time.Duration
}

// Failure describes the outcome of recording one failed verification.
type Failure struct {
	Locked    bool
	Remaining int
}

// VerificationLockout tracks failed verifications per email and locks the
// email once the budget is spent.
type VerificationLockout struct {
	store  kvstore.Store
	config VerificationConfig
}

func NewVerificationLockout(store kvstore.Store, cfg VerificationConfig) *VerificationLockout {
	return &VerificationLockout{store: store, config: cfg}
}

// Locked reports whether the lock flag is present.
func (l *VerificationLockout) Locked(ctx context.Context, email string) (bool, error) {
	if l == nil {
		return false, nil
	}

	ok, err := l.store.Exists(ctx, keys.Lock(email))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrVerificationLockoutUnavailable, err)
	}
	return ok, nil
}

// RecordFailure counts one wrong submission. On the last allowed failure the
// lock is written first, then the live code and the counter are removed in a
// single delete.
func (l *VerificationLockout) RecordFailure(ctx context.Context, email string) (Failure, error) {
	if l == nil {
		return Failure{}, nil
	}

	count, err := kvstore.GetInt(ctx, l.store, keys.Attempts(email))
	if err != nil {
		return Failure{}, fmt.Errorf("%w: %v", ErrVerificationLockoutUnavailable, err)
	}

	last := int64(l.config.MaxFailures - 1)
	if count >= last {
		if err := l.store.Set(ctx, keys.Lock(email), "locked", l.config.LockTTL); err != nil {
			return Failure{}, fmt.Errorf("%w: %v", ErrVerificationLockoutUnavailable, err)
		}
		if err := l.store.Del(ctx, keys.OTP(email), keys.Attempts(email)); err != nil {
			return Failure{}, fmt.Errorf("%w: %v", ErrVerificationLockoutUnavailable, err)
		}
		return Failure{Locked: true}, nil
	}

	if _, err := l.store.Incr(ctx, keys.Attempts(email), l.config.AttemptsTTL); err != nil {
		return Failure{}, fmt.Errorf("%w: %v", ErrVerificationLockoutUnavailable, err)
	}
	return Failure{Remaining: int(last - count)}, nil
}

// Clear drops the failed-attempt counter after a successful verification.
func (l *VerificationLockout) Clear(ctx context.Context, email string) error {
	if l == nil {
		return nil
	}

	if err := l.store.Del(ctx, keys.Attempts(email)); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationLockoutUnavailable, err)
	}
	return nil
}
