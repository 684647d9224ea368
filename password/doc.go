// Package password implements password hashing and verification with bcrypt.
//
// # Output format
//
// Hashes are standard modular-crypt bcrypt strings ($2a$<cost>$...), so hashes
// written by other bcrypt implementations verify unchanged.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length, reuse of the current password) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other otpauth package.
//   - Log plaintext passwords.
package password
