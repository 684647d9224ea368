package otpauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/journey"
	"github.com/MrEthical07/otpauth/internal/validate"
)

// Register validates the sign-up data, rejects a known email and sends a
// registration code. No user is created until VerifyRegistration succeeds.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) error {
	if e == nil {
		return ErrEngineNotReady
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := e.validateRegistration(req); err != nil {
		return err
	}

	if _, exists, err := e.findUser(ctx, req.Email); err != nil {
		return err
	} else if exists {
		e.metricInc(MetricRegistrationDuplicate)
		return newError(KindConflict, msgUserExists)
	}

	j := journey.Start(journey.Registration, req.Email)
	if err := e.issueOTP(ctx, j, req.Name, TemplateRegistration); err != nil {
		return err
	}

	e.metricInc(MetricRegistrationStarted)
	e.log(ctx).Info("registration otp sent", zap.String("email", req.Email))
	return nil
}

// VerifyRegistration checks the code and creates the verified user. All four
// fields are required; the name and password are taken from this request.
func (e *Engine) VerifyRegistration(ctx context.Context, req VerifyRegistrationRequest) (User, error) {
	if e == nil {
		return User{}, ErrEngineNotReady
	}
	req.Email = strings.TrimSpace(req.Email)

	if validate.Blank(req.Email, req.OTP, req.Password, req.Name) {
		return User{}, newError(KindMissingFields, msgMissingFields)
	}

	if _, exists, err := e.findUser(ctx, req.Email); err != nil {
		return User{}, err
	} else if exists {
		e.metricInc(MetricRegistrationDuplicate)
		return User{}, newError(KindConflict, msgUserExists)
	}

	j := journey.Resume(journey.Registration, req.Email, journey.OtpPending)
	if err := e.verifyOTP(ctx, j, req.OTP); err != nil {
		return User{}, err
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return User{}, err
	}

	user, err := e.users.Create(ctx, NewUser{
		Name:         req.Name,
		Email:        req.Email,
		Role:         e.config.Registration.DefaultRole,
		PasswordHash: hash,
		IsVerified:   true,
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			e.metricInc(MetricRegistrationDuplicate)
			return User{}, newError(KindConflict, msgUserExists)
		}
		return User{}, e.databaseError(ctx, "create user", err)
	}

	if _, err := j.Fire(journey.Finish); err != nil {
		return User{}, err
	}

	e.metricInc(MetricRegistrationCompleted)
	e.log(ctx).Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (e *Engine) validateRegistration(req RegisterRequest) error {
	if validate.Blank(req.Name, req.Email, req.Password) {
		return newError(KindValidation, msgMissingRegister)
	}
	if err := validate.Struct(req); err != nil {
		return newError(KindValidation, msgInvalidEmail)
	}

	minName := strconv.Itoa(e.config.Registration.MinNameLength)
	if err := validate.Var(strings.TrimSpace(req.Name), "min="+minName); err != nil {
		return newError(KindValidation, fmt.Sprintf(msgNameTooShort, minName))
	}
	if err := e.validatePassword(req.Password); err != nil {
		return err
	}
	return nil
}

func (e *Engine) validatePassword(plain string) error {
	minLen := strconv.Itoa(e.config.Password.MinLength)
	if err := validate.Var(plain, "min="+minLen); err != nil {
		return newError(KindValidation, fmt.Sprintf(msgPasswordTooShort, minLen))
	}
	return nil
}
