// Package delivery runs OTP mail delivery off the request path.
//
// Requests enqueue a [Job] and return immediately. Worker goroutines pace
// outbound sends with a token bucket, apply a per-send timeout and log
// failures. Failures never propagate back to the request that enqueued the
// job.
//
// Jobs carry the plaintext code. Nothing in this package logs it.
package delivery
