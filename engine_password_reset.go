package otpauth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/journey"
	"github.com/MrEthical07/otpauth/internal/validate"
)

// RequestPasswordReset sends a reset code to a registered email.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return newError(KindMissingFields, msgMissingFields)
	}

	user, exists, err := e.findUser(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return newError(KindNotFound, msgUserNotFound)
	}

	j := journey.Start(journey.PasswordReset, email)
	if err := e.issueOTP(ctx, j, user.Name, TemplatePasswordReset); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetRequest)
	e.log(ctx).Info("password reset otp sent", zap.String("email", email))
	return nil
}

// VerifyPasswordResetOTP checks a reset code and, on success, records that
// the code was verified so ResetPassword can accept it.
func (e *Engine) VerifyPasswordResetOTP(ctx context.Context, email, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	email = strings.TrimSpace(email)
	if validate.Blank(email, code) {
		return newError(KindMissingFields, msgMissingFields)
	}

	j := journey.Resume(journey.PasswordReset, email, journey.OtpPending)
	if err := e.verifyOTP(ctx, j, code); err != nil {
		return err
	}
	if err := e.resetMarker.Mark(ctx, email, code); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetVerified)
	return nil
}

// ResetPassword sets a new password for a user whose reset code was verified
// with the same code. The new password must differ from the current one;
// that check runs before anything is written.
func (e *Engine) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if e == nil {
		return ErrEngineNotReady
	}
	req.Email = strings.TrimSpace(req.Email)
	if validate.Blank(req.Email, req.OTP, req.NewPassword) {
		return newError(KindMissingFields, msgMissingFields)
	}

	user, exists, err := e.findUser(ctx, req.Email)
	if err != nil {
		return err
	}
	if !exists {
		return newError(KindNotFound, msgUserNotFound)
	}

	verified, err := e.resetMarker.Check(ctx, req.Email, req.OTP)
	if err != nil {
		return err
	}
	if !verified {
		return newError(KindOTPInvalid, msgResetNotVerified)
	}
	j := journey.Resume(journey.PasswordReset, req.Email, journey.Verified)

	same, err := e.passwordHash.Verify(req.NewPassword, user.PasswordHash)
	if err != nil {
		e.log(ctx).Warn("stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
	}
	if same {
		e.metricInc(MetricPasswordResetSameRejected)
		return newError(KindSamePassword, msgSamePassword)
	}
	if err := e.validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := e.passwordHash.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := e.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return e.databaseError(ctx, "update password", err)
	}
	if err := e.resetMarker.Clear(ctx, req.Email); err != nil {
		e.log(ctx).Warn("reset marker not cleared", zap.String("email", req.Email), zap.Error(err))
	}
	if _, err := j.Fire(journey.Finish); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetCompleted)
	e.log(ctx).Info("password reset", zap.String("user_id", user.ID))
	return nil
}
