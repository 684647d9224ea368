package otpauth

import (
	"bytes"
	"errors"
	"time"
)

// Config holds every tunable of the engine. Start from [DefaultConfig] and
// override what differs; zero values are not defaults.
type Config struct {
	JWT          JWTConfig
	OTP          OTPConfig
	Password     PasswordConfig
	Registration RegistrationConfig
	Store        StoreConfig
	Delivery     DeliveryConfig
	Metrics      MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds session token secrets and lifetimes. The two secrets must
// differ.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig holds code lifetimes and the abuse thresholds for issuance and
// verification.
type OTPConfig struct {
	CodeTTL     time.Duration
	CooldownTTL time.Duration

	// MaxRequests issuances are allowed per RequestWindow; the next one sets
	// the spam lock for SpamLockTTL.
	MaxRequests   int
	RequestWindow time.Duration
	SpamLockTTL   time.Duration

	// MaxFailedAttempts wrong codes lock verification for LockTTL.
	MaxFailedAttempts int
	AttemptsTTL       time.Duration
	LockTTL           time.Duration

	// ResetMarkerTTL bounds the gap between verifying a reset code and
	// submitting the new password.
	ResetMarkerTTL time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	BcryptCost int
	MinLength  int
}

type RegistrationConfig struct {
	MinNameLength int
	DefaultRole   string
}

type StoreConfig struct {
	OperationTimeout time.Duration
}

// DeliveryConfig controls the asynchronous OTP mail queue.
type DeliveryConfig struct {
	Workers       int
	BufferSize    int
	DropIfFull    bool
	SendTimeout   time.Duration
	RatePerSecond float64
	Burst         int
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults. Token secrets are left empty
// and must be supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		OTP: OTPConfig{
			CodeTTL:           300 * time.Second,
			CooldownTTL:       60 * time.Second,
			MaxRequests:       2,
			RequestWindow:     time.Hour,
			SpamLockTTL:       time.Hour,
			MaxFailedAttempts: 3,
			AttemptsTTL:       30 * time.Minute,
			LockTTL:           30 * time.Minute,
			ResetMarkerTTL:    300 * time.Second,
		},
		Password: PasswordConfig{
			BcryptCost: 10,
			MinLength:  6,
		},
		Registration: RegistrationConfig{
			MinNameLength: 3,
			DefaultRole:   "user",
		},
		Store: StoreConfig{
			OperationTimeout: 2 * time.Second,
		},
		Delivery: DeliveryConfig{
			Workers:       2,
			BufferSize:    256,
			DropIfFull:    true,
			SendTimeout:   10 * time.Second,
			RatePerSecond: 10,
			Burst:         5,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks structural consistency. It does not check secret strength
// beyond presence; jwt.NewManager enforces that at Build.
func (c Config) Validate() error {
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("JWT access and refresh secrets are required")
	}
	if bytes.Equal(c.JWT.AccessSecret, c.JWT.RefreshSecret) {
		return errors.New("JWT access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT TTLs must be positive")
	}

	o := c.OTP
	if o.CodeTTL <= 0 || o.CooldownTTL <= 0 || o.RequestWindow <= 0 ||
		o.SpamLockTTL <= 0 || o.AttemptsTTL <= 0 || o.LockTTL <= 0 || o.ResetMarkerTTL <= 0 {
		return errors.New("OTP TTLs must be positive")
	}
	if o.CooldownTTL > o.CodeTTL {
		return errors.New("OTP CooldownTTL must not exceed CodeTTL")
	}
	if o.MaxRequests < 1 {
		return errors.New("OTP MaxRequests must be at least 1")
	}
	if o.MaxFailedAttempts < 1 {
		return errors.New("OTP MaxFailedAttempts must be at least 1")
	}

	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be at least 1")
	}
	if c.Registration.MinNameLength < 1 {
		return errors.New("Registration MinNameLength must be at least 1")
	}
	if c.Registration.DefaultRole == "" {
		return errors.New("Registration DefaultRole is required")
	}
	if c.Store.OperationTimeout <= 0 {
		return errors.New("Store OperationTimeout must be positive")
	}
	if c.Delivery.BufferSize < 1 || c.Delivery.Workers < 1 {
		return errors.New("Delivery BufferSize and Workers must be at least 1")
	}
	if c.Delivery.RatePerSecond < 0 {
		return errors.New("Delivery RatePerSecond must not be negative")
	}

	return nil
}

func cloneConfig(in Config) Config {
	out := in
	out.JWT.AccessSecret = append([]byte(nil), in.JWT.AccessSecret...)
	out.JWT.RefreshSecret = append([]byte(nil), in.JWT.RefreshSecret...)
	return out
}
