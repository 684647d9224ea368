// Package keys builds every ephemeral-store key used by the OTP workflow.
// No other package concatenates key strings.
package keys

const (
	otpPrefix           = "otp:"
	cooldownPrefix      = "otp_cooldown:"
	spamLockPrefix      = "otp_spam_lock:"
	requestCountPrefix  = "otp_request_count:"
	attemptsPrefix      = "otp_attempts:"
	lockPrefix          = "otp_lock:"
	resetVerifiedPrefix = "otp_reset_verified:"
)

// OTP holds the live one-time code for email.
func OTP(email string) string { return otpPrefix + email }

// Cooldown blocks re-issuance for a short window after a code is sent.
func Cooldown(email string) string { return cooldownPrefix + email }

// SpamLock blocks issuance after too many requests within the counting window.
func SpamLock(email string) string { return spamLockPrefix + email }

// RequestCount counts issuance requests within the counting window.
func RequestCount(email string) string { return requestCountPrefix + email }

// Attempts counts failed verifications against the live code.
func Attempts(email string) string { return attemptsPrefix + email }

// Lock is set once the failed-verification budget is exhausted.
func Lock(email string) string { return lockPrefix + email }

// ResetVerified marks a password-reset code as successfully verified.
func ResetVerified(email string) string { return resetVerifiedPrefix + email }
