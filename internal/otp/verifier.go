package otp

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/limiters"
	"github.com/MrEthical07/otpauth/kvstore"
)

// ErrVerifierUnavailable wraps store failures during verification.
var ErrVerifierUnavailable = errors.New("otp verifier unavailable")

// Outcome is the single evaluation of a submitted code against the stored one.
type Outcome uint8

const (
	Mismatched Outcome = iota
	Matched
)

func (o Outcome) String() string {
	if o == Matched {
		return "matched"
	}
	return "mismatched"
}

// Result is what Verify observed. Locked is set when the lock was already
// active or was set by this submission. Remaining is only meaningful for a
// mismatch that did not lock.
type Result struct {
	Outcome   Outcome
	Locked    bool
	Remaining int
}

type Verifier struct {
	store   kvstore.Store
	lockout *limiters.VerificationLockout
	logger  *zap.Logger
}

func NewVerifier(store kvstore.Store, lockout *limiters.VerificationLockout, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{store: store, lockout: lockout, logger: logger.Named("otp")}
}

// Verify checks submitted against the live code for email. An active lock
// short-circuits regardless of the code. A match consumes the code and clears
// the attempt counter. A missing record, an empty submission and a wrong code
// all count as a mismatch and spend one attempt.
func (v *Verifier) Verify(ctx context.Context, email, submitted string) (Result, error) {
	locked, err := v.lockout.Locked(ctx, email)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	if locked {
		return Result{Outcome: Mismatched, Locked: true}, nil
	}

	stored, err := v.store.Get(ctx, keys.OTP(email))
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return Result{}, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}

	outcome := Mismatched
	if equal(stored, submitted) {
		outcome = Matched
	}

	switch outcome {
	case Matched:
		if err := v.store.Del(ctx, keys.OTP(email), keys.Attempts(email)); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
		}
		return Result{Outcome: Matched}, nil
	default:
		failure, err := v.lockout.RecordFailure(ctx, email)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
		}
		if failure.Locked {
			v.logger.Warn("otp verification locked", zap.String("email", email))
		} else {
			v.logger.Info("otp verification failed",
				zap.String("email", email),
				zap.Int("remaining", failure.Remaining),
			)
		}
		return Result{Outcome: Mismatched, Locked: failure.Locked, Remaining: failure.Remaining}, nil
	}
}
