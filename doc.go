// Package otpauth verifies account ownership with emailed one-time codes
// and issues JWT session tokens.
//
// Two journeys are gated by a code: registration (Register, then
// VerifyRegistration) and password reset (RequestPasswordReset, then
// VerifyPasswordResetOTP, then ResetPassword). Login, RefreshAccess and
// Authenticate cover the credential side.
//
// Codes, cooldowns, request counters and lockouts live in a TTL key-value
// store (see package kvstore); users live behind [UserStore]. Mail is sent
// asynchronously by background workers, so a delivery failure never fails the
// call that issued the code.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build]. Errors returned to callers are *[Error] values whose Kind
// maps onto a transport status and whose Message is safe to show to users.
package otpauth
