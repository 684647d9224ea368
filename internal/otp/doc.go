// Package otp issues and verifies one-time passcodes.
//
// [Issuer] writes the live code and the resend cooldown, then hands the code
// to the delivery dispatcher. [Verifier] evaluates a submission exactly once
// into a matched or mismatched outcome and applies the attempt budget.
// [ResetMarker] records that a password-reset code has been verified so the
// final reset step can be bound to it.
//
// Rate-limit gating happens before Issue is called and is owned by
// internal/limiters.
package otp
