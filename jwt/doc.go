// Package jwt issues and verifies the access and refresh tokens of a session
// pair. Both are HS256-signed claim sets carrying the user id and role; they
// are signed with distinct secrets so neither can be replayed as the other.
package jwt
