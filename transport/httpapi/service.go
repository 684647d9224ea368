package httpapi

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth"
)

// Service is the engine surface the handlers call. *otpauth.Engine
// satisfies it.
type Service interface {
	Register(ctx context.Context, req otpauth.RegisterRequest) error
	VerifyRegistration(ctx context.Context, req otpauth.VerifyRegistrationRequest) (otpauth.User, error)
	Login(ctx context.Context, email, password string) (otpauth.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyPasswordResetOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, req otpauth.ResetPasswordRequest) error
	RefreshAccess(ctx context.Context, refreshToken string) (string, otpauth.User, error)
	Authenticate(ctx context.Context, accessToken string) (otpauth.User, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

var _ Service = (*otpauth.Engine)(nil)
