// Package middleware adapts the engine to net/http.
//
// [Guard] protects routes that need a signed-in user: it reads the
// access_token cookie (or a Bearer header), resolves it through
// Engine.Authenticate and exposes the user via [UserFromContext].
// [RequestContext] forwards the client IP and request id to engine logs.
package middleware
