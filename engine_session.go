package otpauth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/validate"
)

// Login checks credentials and mints a session pair. Unknown emails and wrong
// passwords return the same error.
func (e *Engine) Login(ctx context.Context, email, plain string) (LoginResult, error) {
	if e == nil {
		return LoginResult{}, ErrEngineNotReady
	}
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricLoginLatency, time.Since(start))
		}
	}()

	email = strings.TrimSpace(email)
	if validate.Blank(email, plain) {
		return LoginResult{}, newError(KindValidation, msgCredsRequired)
	}

	user, exists, err := e.findUser(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !exists {
		return LoginResult{}, e.loginFailed(ctx, email, "unknown email")
	}

	ok, err := e.passwordHash.Verify(plain, user.PasswordHash)
	if err != nil {
		e.log(ctx).Warn("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return LoginResult{}, e.loginFailed(ctx, email, "password mismatch")
	}
	e.upgradeHash(ctx, user, plain)

	pair, err := e.jwtManager.MintPair(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.log(ctx).Info("login", zap.String("user_id", user.ID))
	return LoginResult{
		User: user,
		Session: SessionPair{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			AccessTTL:    e.jwtManager.AccessTTL(),
			RefreshTTL:   e.jwtManager.RefreshTTL(),
		},
	}, nil
}

// upgradeHash rehashes a password stored at a lower bcrypt cost than the
// configured one. Failures are logged; the login proceeds either way.
func (e *Engine) upgradeHash(ctx context.Context, user User, plain string) {
	stale, err := e.passwordHash.NeedsUpgrade(user.PasswordHash)
	if err != nil || !stale {
		return
	}
	hash, err := e.passwordHash.Hash(plain)
	if err == nil {
		err = e.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		e.log(ctx).Warn("password rehash failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	e.log(ctx).Info("password rehashed", zap.String("user_id", user.ID))
}

func (e *Engine) loginFailed(ctx context.Context, email, reason string) error {
	e.metricInc(MetricLoginFailure)
	e.log(ctx).Info("login rejected", zap.String("email", email), zap.String("reason", reason))
	return newError(KindInvalidCredentials, msgInvalidCreds)
}

// RefreshAccess mints a new access token from a valid refresh token. The
// refresh token itself is not rotated.
func (e *Engine) RefreshAccess(ctx context.Context, refreshToken string) (string, User, error) {
	if e == nil {
		return "", User{}, ErrEngineNotReady
	}
	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		return "", User{}, newError(KindMissingToken, msgRefreshMissing)
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return "", User{}, wrapError(KindInvalidToken, msgRefreshInvalid, err)
	}

	user, err := e.users.FindByID(ctx, claims.UserID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if errors.Is(err, ErrUserNotFound) {
			return "", User{}, newError(KindNotFound, msgUserNotFound)
		}
		return "", User{}, e.databaseError(ctx, "find user by id", err)
	}

	access, err := e.jwtManager.CreateAccess(user.ID, user.Role)
	if err != nil {
		return "", User{}, err
	}

	e.metricInc(MetricRefreshSuccess)
	return access, user, nil
}

// Authenticate resolves an access token to its user.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (User, error) {
	if e == nil {
		return User{}, ErrEngineNotReady
	}
	if accessToken == "" {
		e.metricInc(MetricAuthenticateFailure)
		return User{}, newError(KindUnauthenticated, msgTokenMissing)
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		return User{}, wrapError(KindUnauthenticated, msgTokenInvalid, err)
	}

	user, err := e.users.FindByID(ctx, claims.UserID)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		if errors.Is(err, ErrUserNotFound) {
			return User{}, newError(KindUnauthenticated, msgAccountMissing)
		}
		return User{}, e.databaseError(ctx, "find user by id", err)
	}
	return user, nil
}
