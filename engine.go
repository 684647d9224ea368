package otpauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/delivery"
	"github.com/MrEthical07/otpauth/internal/journey"
	"github.com/MrEthical07/otpauth/internal/limiters"
	"github.com/MrEthical07/otpauth/internal/otp"
	"github.com/MrEthical07/otpauth/jwt"
	"github.com/MrEthical07/otpauth/kvstore"
	"github.com/MrEthical07/otpauth/password"
)

// Engine runs the OTP-gated registration and password-reset flows, login,
// and session token refresh. Construct it with [Builder]; it is safe for
// concurrent use afterwards.
type Engine struct {
	config       Config
	store        kvstore.Store
	users        UserStore
	issuance     *limiters.IssuanceLimiter
	issuer       *otp.Issuer
	verifier     *otp.Verifier
	resetMarker  *otp.ResetMarker
	delivery     *delivery.Dispatcher
	passwordHash *password.Bcrypt
	jwtManager   *jwt.Manager
	metrics      *Metrics
	logger       *zap.Logger
}

// Close drains the delivery queue. Call it once during shutdown.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.delivery != nil {
		e.delivery.Close()
	}
	_ = e.logger.Sync()
}

// DeliveryDropped is the number of OTP mails dropped because the queue was full.
func (e *Engine) DeliveryDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.delivery.Dropped()
}

// DeliveryFailed is the number of OTP mails whose send failed.
func (e *Engine) DeliveryFailed() uint64 {
	if e == nil {
		return 0
	}
	return e.delivery.Failed()
}

// DeliverySent is the number of OTP mails handed to the sender successfully.
func (e *Engine) DeliverySent() uint64 {
	if e == nil {
		return 0
	}
	return e.delivery.Delivered()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AccessTTL is the lifetime of access tokens and their cookie.
func (e *Engine) AccessTTL() time.Duration { return e.config.JWT.AccessTTL }

// RefreshTTL is the lifetime of refresh tokens and their cookie.
func (e *Engine) RefreshTTL() time.Duration { return e.config.JWT.RefreshTTL }

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) log(ctx context.Context) *zap.Logger {
	l := e.logger
	if ip := clientIPFromContext(ctx); ip != "" {
		l = l.With(zap.String("ip", ip))
	}
	if id := requestIDFromContext(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	return l
}

// issueOTP runs the issuance gates, counts the request and issues a code.
func (e *Engine) issueOTP(ctx context.Context, j *journey.Journey, name, template string) error {
	email := j.Email()

	if err := e.issuance.CheckAllowed(ctx, email); err != nil {
		return e.issuanceError(ctx, email, err)
	}
	if err := e.issuance.RecordAttempt(ctx, email); err != nil {
		return e.issuanceError(ctx, email, err)
	}

	if _, err := e.issuer.Issue(ctx, otp.Request{Name: name, Email: email, Template: template}); err != nil {
		return err
	}
	if _, err := j.Fire(journey.Issue); err != nil {
		return err
	}

	e.metricInc(MetricOTPIssued)
	return nil
}

func (e *Engine) issuanceError(ctx context.Context, email string, err error) error {
	var msg string
	switch {
	case errors.Is(err, limiters.ErrIssuanceLocked):
		msg = msgCooldownLock
	case errors.Is(err, limiters.ErrIssuanceSpamLocked):
		msg = msgSpamLocked
	case errors.Is(err, limiters.ErrIssuanceCooldown):
		msg = msgCooldown
	case errors.Is(err, limiters.ErrIssuanceTooMany):
		e.metricInc(MetricOTPSpamLocked)
		e.log(ctx).Warn("otp spam lock set", zap.String("email", email))
		msg = msgTooManyRequests
	default:
		return err
	}

	e.metricInc(MetricOTPRateLimited)
	return newError(KindRateLimited, msg)
}

// verifyOTP checks code and advances the journey to Verified on a match.
func (e *Engine) verifyOTP(ctx context.Context, j *journey.Journey, code string) error {
	res, err := e.verifier.Verify(ctx, j.Email(), code)
	if err != nil {
		return err
	}

	switch {
	case res.Outcome == otp.Matched:
		e.metricInc(MetricOTPVerifySuccess)
		_, err := j.Fire(journey.Verify)
		return err
	case res.Locked:
		e.metricInc(MetricOTPLocked)
		return newError(KindOTPLocked, fmt.Sprintf(msgOTPLocked, int(e.config.OTP.LockTTL/time.Minute)))
	default:
		e.metricInc(MetricOTPVerifyFailure)
		return newError(KindOTPInvalid, fmt.Sprintf(msgIncorrectOTP, res.Remaining))
	}
}

// findUser looks a user up by email and reports whether it exists. Store
// failures other than not-found become database errors.
func (e *Engine) findUser(ctx context.Context, email string) (User, bool, error) {
	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, false, nil
		}
		return User{}, false, e.databaseError(ctx, "find user by email", err)
	}
	return user, true, nil
}

func (e *Engine) databaseError(ctx context.Context, op string, err error) error {
	e.log(ctx).Error("user store failure", zap.String("op", op), zap.Error(err))
	return wrapError(KindDatabase, msgDatabase, err)
}
