// Command otpauthd serves the OTP-gated registration, password reset and
// session endpoints over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/internal/config"
	"github.com/MrEthical07/otpauth/internal/rate"
	"github.com/MrEthical07/otpauth/mail"
	"github.com/MrEthical07/otpauth/metrics/export/prometheus"
	"github.com/MrEthical07/otpauth/transport/httpapi"
	"github.com/MrEthical07/otpauth/userstore/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := cfg.Logger()
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("otpauthd stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cfg.ConnectRedis(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	logger.Info("redis connected")

	pool, err := postgres.Connect(ctx, cfg.PostgresConfig())
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("postgres connected")

	renderer, err := mail.NewRenderer()
	if err != nil {
		return err
	}
	sender, err := cfg.MailSender(logger)
	if err != nil {
		return err
	}

	proxies, err := cfg.HTTP.Proxies()
	if err != nil {
		return err
	}

	engine, err := otpauth.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithUserStore(postgres.New(pool)).
		WithOTPSender(mail.NewOTPMailer(renderer, sender)).
		WithLogger(logger).
		WithMetricsEnabled(cfg.MetricsEnabled).
		WithLatencyHistograms(cfg.MetricsEnabled).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	opts := httpapi.Options{
		Service: engine,
		Logger:  logger,
		Cookies: httpapi.CookieConfig{
			Path:     cfg.HTTP.CookiePath,
			Domain:   cfg.HTTP.CookieDomain,
			Secure:   cfg.HTTP.CookieSecure,
			SameSite: http.SameSiteStrictMode,
		},
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TrustedProxies: proxies,
		Limiter: rate.New(rdb, rate.Config{
			Limit:  cfg.HTTP.RateLimit,
			Window: cfg.HTTP.RateWindow,
			Prefix: "gw_ip:",
		}),
		BodyLimit: cfg.HTTP.BodyLimit,
		Health: []httpapi.HealthCheck{
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
			{Name: "postgres", Check: postgres.Healthcheck(pool)},
		},
		Development: cfg.Development(),
	}
	if cfg.MetricsEnabled {
		opts.Metrics = prometheus.NewExporter(engine).Handler()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", zap.Error(err))
	}
	return nil
}
