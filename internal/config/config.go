// Package config loads process configuration from the environment (and an
// optional .env file) and turns it into the engine, logger, Redis, Postgres
// and mail settings the service binary needs.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/middleware"
	"github.com/MrEthical07/otpauth/userstore/postgres"
)

var ErrInvalidConfig = errors.New("invalid config")

// Mail drivers.
const (
	MailDriverSMTP     = "smtp"
	MailDriverPostmark = "postmark"
	MailDriverLog      = "log"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"production"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`

	LogLevel string `env:"LOG_LEVEL"`
	LogDev   bool   `env:"LOG_DEV"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	Redis    RedisConfig
	Postgres PostgresConfig
	Mail     MailConfig
	HTTP     HTTPConfig
}

type RedisConfig struct {
	URL              string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts    int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout   time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	OperationTimeout time.Duration `env:"REDIS_OPERATION_TIMEOUT" envDefault:"2s"`
}

type PostgresConfig struct {
	URL           string        `env:"DATABASE_URL,required"`
	MaxConns      int32         `env:"PG_MAX_CONNS" envDefault:"10"`
	MinConns      int32         `env:"PG_MIN_CONNS" envDefault:"2"`
	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"2s"`
}

type MailConfig struct {
	Driver string `env:"MAIL_DRIVER" envDefault:"smtp"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	SMTPFrom string `env:"SMTP_FROM"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	PostmarkFrom         string `env:"POSTMARK_FROM"`
	PostmarkReplyTo      string `env:"POSTMARK_REPLY_TO"`
}

type HTTPConfig struct {
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200,http://localhost:4201,http://localhost:4202"`
	CookiePath   string        `env:"COOKIE_PATH" envDefault:"/api"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	RateLimit    int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	BodyLimit    int64         `env:"BODY_LIMIT_BYTES" envDefault:"1048576"`

	// TrustedProxies lists the CIDRs or addresses of reverse proxies whose
	// X-Forwarded-For is believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Load reads the given .env files (or ./.env when none are named; a missing
// default file is fine) and parses the environment.
func Load(paths ...string) (Config, error) {
	if len(paths) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(paths...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("%w: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ", ErrInvalidConfig)
	}
	switch c.Mail.Driver {
	case MailDriverSMTP, MailDriverPostmark, MailDriverLog:
	default:
		return fmt.Errorf("%w: unknown MAIL_DRIVER %q", ErrInvalidConfig, c.Mail.Driver)
	}
	if c.HTTP.RateLimit < 1 || c.HTTP.RateWindow <= 0 {
		return fmt.Errorf("%w: gateway rate limit must be positive", ErrInvalidConfig)
	}
	if c.HTTP.BodyLimit < 1 {
		return fmt.Errorf("%w: BODY_LIMIT_BYTES must be positive", ErrInvalidConfig)
	}
	if _, err := c.HTTP.Proxies(); err != nil {
		return err
	}
	return nil
}

// Proxies parses TRUSTED_PROXIES.
func (h HTTPConfig) Proxies() ([]netip.Prefix, error) {
	p, err := middleware.ParseTrustedProxies(h.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("%w: TRUSTED_PROXIES: %v", ErrInvalidConfig, err)
	}
	return p, nil
}

// Development reports whether APP_ENV selects development behavior.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}

// Engine converts the process configuration into engine settings on top of
// the engine defaults.
func (c Config) Engine() otpauth.Config {
	cfg := otpauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte(c.AccessTokenSecret)
	cfg.JWT.RefreshSecret = []byte(c.RefreshTokenSecret)
	cfg.Store.OperationTimeout = c.Redis.OperationTimeout
	return cfg
}

func (c Config) PostgresConfig() postgres.Config {
	return postgres.Config{
		ConnectionString: c.Postgres.URL,
		MaxConns:         c.Postgres.MaxConns,
		MinConns:         c.Postgres.MinConns,
		RetryAttempts:    c.Postgres.RetryAttempts,
		RetryInterval:    c.Postgres.RetryInterval,
	}
}
