// Package limiters provides the OTP issuance and verification policies built
// on the ephemeral store.
//
// # Limiters
//
//   - [IssuanceLimiter]: lock, spam-lock and cooldown gates plus the per-email
//     request counter that escalates to a spam lock.
//   - [VerificationLockout]: failed-attempt counter that escalates to a lock.
//
// All limiters are nil-safe: calling any method on a nil receiver returns the
// zero result and a nil error.
//
// # What this package must NOT do
//
//   - Import otpauth or build store keys itself (use internal/keys).
//   - Generate, store or compare codes. Flow code in internal/otp does that.
package limiters
