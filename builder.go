package otpauth

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/internal/delivery"
	"github.com/MrEthical07/otpauth/internal/limiters"
	"github.com/MrEthical07/otpauth/internal/otp"
	"github.com/MrEthical07/otpauth/jwt"
	"github.com/MrEthical07/otpauth/kvstore"
	"github.com/MrEthical07/otpauth/password"
)

// Builder assembles an [Engine]. Configure it during initialization and call
// Build exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  kvstore.Store
	users  UserStore
	sender OTPSender
	logger *zap.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the key-value state with client. Operations use
// Config.Store.OperationTimeout.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore backs the key-value state with an arbitrary store. It takes
// precedence over WithRedis.
func (b *Builder) WithStore(store kvstore.Store) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithOTPSender sets the mail transport used by the delivery workers.
func (b *Builder) WithOTPSender(sender OTPSender) *Builder {
	b.sender = sender
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. It starts the
// delivery workers; release them with Engine.Close.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or store required")
		}
		store = kvstore.NewRedis(b.redis, cfg.Store.OperationTimeout)
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.sender == nil {
		return nil, errors.New("otp sender required")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ph, err := password.NewBcrypt(password.Config{Cost: cfg.Password.BcryptCost})
	if err != nil {
		return nil, err
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	sender := b.sender
	dispatcher := delivery.NewDispatcher(delivery.Config{
		Workers:       cfg.Delivery.Workers,
		BufferSize:    cfg.Delivery.BufferSize,
		DropIfFull:    cfg.Delivery.DropIfFull,
		SendTimeout:   cfg.Delivery.SendTimeout,
		RatePerSecond: cfg.Delivery.RatePerSecond,
		Burst:         cfg.Delivery.Burst,
	}, delivery.SenderFunc(func(ctx context.Context, job delivery.Job) error {
		return sender.SendOTP(ctx, OTPMessage{
			Name:     job.Name,
			Email:    job.Email,
			Code:     job.Code,
			Template: job.Template,
		})
	}), logger)

	lockout := limiters.NewVerificationLockout(store, limiters.VerificationConfig{
		MaxFailures: cfg.OTP.MaxFailedAttempts,
		AttemptsTTL: cfg.OTP.AttemptsTTL,
		LockTTL:     cfg.OTP.LockTTL,
	})

	engine := &Engine{
		config: cfg,
		store:  store,
		users:  b.users,
		issuance: limiters.NewIssuanceLimiter(store, limiters.IssuanceConfig{
			MaxRequests:   cfg.OTP.MaxRequests,
			RequestWindow: cfg.OTP.RequestWindow,
			SpamLockTTL:   cfg.OTP.SpamLockTTL,
		}),
		issuer: otp.NewIssuer(store, otp.IssuerConfig{
			CodeTTL:     cfg.OTP.CodeTTL,
			CooldownTTL: cfg.OTP.CooldownTTL,
		}, dispatcher, logger),
		verifier:     otp.NewVerifier(store, lockout, logger),
		resetMarker:  otp.NewResetMarker(store, cfg.OTP.ResetMarkerTTL),
		delivery:     dispatcher,
		passwordHash: ph,
		jwtManager:   jm,
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger.Named("otpauth"),
	}

	b.built = true

	return engine, nil
}
