package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/delivery"
	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/kvstore"
)

// ErrIssuerUnavailable wraps store and randomness failures during issuance.
var ErrIssuerUnavailable = errors.New("otp issuer unavailable")

type IssuerConfig struct {
	CodeTTL     time.Duration
	CooldownTTL time.Duration
}

// Enqueuer accepts delivery jobs. *delivery.Dispatcher satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job delivery.Job) bool
}

// Request names the recipient and the mail template of one issuance.
type Request struct {
	Name     string
	Email    string
	Template string
}

type Issuer struct {
	store    kvstore.Store
	config   IssuerConfig
	enqueuer Enqueuer
	logger   *zap.Logger
}

func NewIssuer(store kvstore.Store, cfg IssuerConfig, enqueuer Enqueuer, logger *zap.Logger) *Issuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Issuer{
		store:    store,
		config:   cfg,
		enqueuer: enqueuer,
		logger:   logger.Named("otp"),
	}
}

// Issue generates a code, stores it (replacing any live code for the email),
// starts the resend cooldown and enqueues delivery. Delivery problems are
// logged and never returned. The code is returned for internal callers only.
func (i *Issuer) Issue(ctx context.Context, req Request) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssuerUnavailable, err)
	}

	if err := i.store.Set(ctx, keys.OTP(req.Email), code, i.config.CodeTTL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssuerUnavailable, err)
	}
	if err := i.store.Set(ctx, keys.Cooldown(req.Email), "true", i.config.CooldownTTL); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssuerUnavailable, err)
	}

	job := delivery.Job{
		Name:     req.Name,
		Email:    req.Email,
		Code:     code,
		Template: req.Template,
	}
	if i.enqueuer == nil || !i.enqueuer.Enqueue(ctx, job) {
		i.logger.Warn("otp stored but delivery not queued",
			zap.String("email", req.Email),
			zap.String("template", req.Template),
		)
	} else {
		i.logger.Info("otp issued",
			zap.String("email", req.Email),
			zap.String("template", req.Template),
		)
	}

	return code, nil
}
