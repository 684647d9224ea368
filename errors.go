package otpauth

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures. The HTTP boundary maps each kind to a
// status code; the engine never deals in status codes.
type ErrorKind uint8

const (
	KindUnexpected ErrorKind = iota
	KindValidation
	KindMissingFields
	KindConflict
	KindNotFound
	KindOTPInvalid
	KindOTPLocked
	KindSamePassword
	KindRateLimited
	KindInvalidCredentials
	KindMissingToken
	KindInvalidToken
	KindUnauthenticated
	KindDatabase
)

var kindNames = [...]string{
	KindUnexpected:         "unexpected",
	KindValidation:         "validation",
	KindMissingFields:      "missing_fields",
	KindConflict:           "conflict",
	KindNotFound:           "not_found",
	KindOTPInvalid:         "otp_invalid",
	KindOTPLocked:          "otp_locked",
	KindSamePassword:       "same_password",
	KindRateLimited:        "rate_limited",
	KindInvalidCredentials: "invalid_credentials",
	KindMissingToken:       "missing_token",
	KindInvalidToken:       "invalid_token",
	KindUnauthenticated:    "unauthenticated",
	KindDatabase:           "database",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Operational reports whether the failure is an expected outcome of user
// input, as opposed to an infrastructure fault.
func (k ErrorKind) Operational() bool {
	return k != KindUnexpected && k != KindDatabase
}

// Error is the typed domain error returned by Engine methods. errors.Is
// matches any two *Error values of the same Kind, so the exported sentinels
// below can be used as kind checks.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnexpected if err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Kind sentinels for errors.Is checks.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrMissingFields      = &Error{Kind: KindMissingFields}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrOTPInvalid         = &Error{Kind: KindOTPInvalid}
	ErrOTPLocked          = &Error{Kind: KindOTPLocked}
	ErrSamePassword       = &Error{Kind: KindSamePassword}
	ErrRateLimited        = &Error{Kind: KindRateLimited}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrMissingToken       = &Error{Kind: KindMissingToken}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrDatabase           = &Error{Kind: KindDatabase}
)

// Sentinels returned by UserStore implementations.
var (
	// ErrUserNotFound signals that no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists signals a unique-email violation on Create.
	ErrUserExists = errors.New("user already exists")
)

// Engine lifecycle errors.
var (
	ErrEngineNotReady = errors.New("engine not initialized")
)

const (
	msgCooldownLock     = "OTP request is on cooldown. Please wait before requesting a new OTP."
	msgSpamLocked       = "Please wait for 1 hour before requesting a new OTP."
	msgCooldown         = "Please wait for 1 minute before requesting a new OTP."
	msgTooManyRequests  = "Too many OTP requests. Please wait for 1 hour before requesting a new OTP."
	msgUserExists       = "User with this email already exists."
	msgUserNotFound     = "User not found."
	msgMissingFields    = "Missing required fields."
	msgMissingRegister  = "Missing required fields for registration."
	msgInvalidEmail     = "Invalid email format."
	msgInvalidCreds     = "Invalid email or password."
	msgCredsRequired    = "Email and password are required."
	msgSamePassword     = "New password must be different from the old password."
	msgResetNotVerified = "Invalid or expired OTP. Please verify the OTP again."
	msgRefreshMissing   = "Refresh token not provided."
	msgRefreshInvalid   = "Invalid refresh token."
	msgTokenMissing     = "Unauthorized! Token missing."
	msgTokenInvalid     = "Unauthorized! Invalid token."
	msgAccountMissing   = "Unauthorized! Account not found."
	msgDatabase         = "A database error occurred."
	msgIncorrectOTP     = "Incorrect OTP. %d attempts left."
	msgOTPLocked        = "Account locked due to multiple failed attempts! Try again after %d minutes."
	msgNameTooShort     = "Name must be at least %s characters long."
	msgPasswordTooShort = "Password must be at least %s characters long."
)
