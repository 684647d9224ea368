package otpauth

import (
	"context"
	"time"
)

// Mail template names understood by OTP senders.
const (
	TemplateRegistration  = "user-registration-mail"
	TemplatePasswordReset = "forgot-password-mail"
)

// User is the persisted account record.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser carries the fields needed to create an account.
type NewUser struct {
	Name         string
	Email        string
	Role         string
	PasswordHash string
	IsVerified   bool
}

// UserStore is the relational user store. Lookups return ErrUserNotFound when
// nothing matches; Create returns ErrUserExists on a duplicate email. Any
// other error is treated as a database fault.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user NewUser) (User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// OTPMessage is one code to deliver by mail.
type OTPMessage struct {
	Name     string
	Email    string
	Code     string
	Template string
}

// OTPSender delivers codes. It is called from background workers with a
// bounded context; its errors are logged and never reach the caller of the
// engine method that issued the code.
type OTPSender interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

// OTPSenderFunc adapts a function to [OTPSender].
type OTPSenderFunc func(ctx context.Context, msg OTPMessage) error

func (f OTPSenderFunc) SendOTP(ctx context.Context, msg OTPMessage) error { return f(ctx, msg) }

// RegisterRequest starts a registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyRegistrationRequest completes a registration.
type VerifyRegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// SessionPair is an access/refresh token pair with their lifetimes.
type SessionPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User    User
	Session SessionPair
}
