package otp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/kvstore"
)

// ResetMarker binds the final password-reset step to a code that was already
// verified. Only a digest of the code is stored.
type ResetMarker struct {
	store kvstore.Store
	ttl   time.Duration
}

func NewResetMarker(store kvstore.Store, ttl time.Duration) *ResetMarker {
	return &ResetMarker{store: store, ttl: ttl}
}

func (m *ResetMarker) Mark(ctx context.Context, email, code string) error {
	if err := m.store.Set(ctx, keys.ResetVerified(email), digest(code), m.ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	return nil
}

// Check reports whether code matches the marker for email.
func (m *ResetMarker) Check(ctx context.Context, email, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	stored, err := m.store.Get(ctx, keys.ResetVerified(email))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	return equal(stored, digest(code)), nil
}

func (m *ResetMarker) Clear(ctx context.Context, email string) error {
	if err := m.store.Del(ctx, keys.ResetVerified(email)); err != nil {
		return fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	return nil
}

func digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
