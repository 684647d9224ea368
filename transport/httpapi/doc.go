// Package httpapi exposes the engine over HTTP with chi.
//
// Routes live under /api. Every failure is written by one translator that
// maps *otpauth.Error kinds onto status codes and a
// {"status":"error","message":...} body; anything else is a 500 with a
// generic message. Session tokens travel in HTTP-only cookies.
package httpapi
