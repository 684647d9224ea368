// Package postgres implements otpauth.UserStore on PostgreSQL with pgx.
//
// The store expects a users table:
//
//	CREATE TABLE users (
//	    id            UUID PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    email         TEXT NOT NULL UNIQUE,
//	    role          TEXT NOT NULL DEFAULT 'user',
//	    password_hash TEXT NOT NULL,
//	    is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//
// Schema management is left to the deployment.
package postgres
