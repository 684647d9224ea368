package internaldefs

import (
	"github.com/MrEthical07/otpauth"
)

// CounterDef binds an engine counter to its exposed name.
type CounterDef struct {
	ID   otpauth.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exposed name.
type HistogramDef struct {
	ID   otpauth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: otpauth.MetricOTPIssued, Name: "otpauth_otp_issued_total", Help: "OTP codes issued and queued for delivery."},
	{ID: otpauth.MetricOTPRateLimited, Name: "otpauth_otp_rate_limited_total", Help: "OTP requests rejected by the resend cooldown."},
	{ID: otpauth.MetricOTPSpamLocked, Name: "otpauth_otp_spam_locked_total", Help: "OTP requests rejected by the spam lock."},
	{ID: otpauth.MetricOTPVerifySuccess, Name: "otpauth_otp_verify_success_total", Help: "Successful OTP verifications."},
	{ID: otpauth.MetricOTPVerifyFailure, Name: "otpauth_otp_verify_failure_total", Help: "Failed OTP verifications."},
	{ID: otpauth.MetricOTPLocked, Name: "otpauth_otp_locked_total", Help: "Identities locked after repeated OTP failures."},
	{ID: otpauth.MetricRegistrationStarted, Name: "otpauth_registration_started_total", Help: "Registrations that issued an OTP."},
	{ID: otpauth.MetricRegistrationCompleted, Name: "otpauth_registration_completed_total", Help: "Registrations that created a user."},
	{ID: otpauth.MetricRegistrationDuplicate, Name: "otpauth_registration_duplicate_total", Help: "Registrations rejected because the email is taken."},
	{ID: otpauth.MetricPasswordResetRequest, Name: "otpauth_password_reset_request_total", Help: "Password reset OTP requests."},
	{ID: otpauth.MetricPasswordResetVerified, Name: "otpauth_password_reset_verified_total", Help: "Password reset OTPs verified."},
	{ID: otpauth.MetricPasswordResetCompleted, Name: "otpauth_password_reset_completed_total", Help: "Passwords replaced through the reset flow."},
	{ID: otpauth.MetricPasswordResetSameRejected, Name: "otpauth_password_reset_same_rejected_total", Help: "Resets rejected for reusing the current password."},
	{ID: otpauth.MetricLoginSuccess, Name: "otpauth_login_success_total", Help: "Successful logins."},
	{ID: otpauth.MetricLoginFailure, Name: "otpauth_login_failure_total", Help: "Failed logins."},
	{ID: otpauth.MetricRefreshSuccess, Name: "otpauth_refresh_success_total", Help: "Access tokens minted from a refresh token."},
	{ID: otpauth.MetricRefreshFailure, Name: "otpauth_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: otpauth.MetricAuthenticateFailure, Name: "otpauth_authenticate_failure_total", Help: "Rejected access tokens."},
}

var HistogramDefs = []HistogramDef{
	{ID: otpauth.MetricLoginLatency, Name: "otpauth_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds are the upper bounds, in seconds, of the engine's latency
// buckets.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
