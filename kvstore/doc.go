// Package kvstore defines the ephemeral key-value store used for OTP records,
// cooldown flags, spam locks and attempt counters.
//
// Every value stored through this package carries a TTL. Expiry is the only
// recovery mechanism for locks and counters, so callers must always pass a
// positive TTL on writes.
//
// Two implementations are provided: [Redis] for production deployments and
// [Memory] for tests and single-process tooling.
package kvstore
