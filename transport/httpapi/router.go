package httpapi

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth/middleware"
)

// HealthCheck probes one dependency for /gateway-health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Options struct {
	Service Service
	Logger  *zap.Logger
	Cookies CookieConfig

	CORSOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For is believed. Empty
	// means the socket address is the client address.
	TrustedProxies []netip.Prefix

	// Limiter enforces the per-IP budget on every route; nil disables it.
	Limiter Limiter
	// BodyLimit caps request bodies; larger bodies get 413.
	BodyLimit int64

	Health []HealthCheck
	// Metrics is served at /metrics when set.
	Metrics http.Handler

	// Development adds error detail to 500 responses.
	Development bool
}

// DefaultBodyLimit applies when Options.BodyLimit is unset.
const DefaultBodyLimit = 1 << 20

// NewRouter builds the HTTP surface.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Cookies == (CookieConfig{}) {
		opts.Cookies = DefaultCookieConfig()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}

	h := &handler{
		svc:     opts.Service,
		cookies: opts.Cookies,
		errors:  errorWriter{logger: logger, development: opts.Development},
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(opts.TrustedProxies))
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.Limiter != nil {
		r.Use(limitByIP(opts.Limiter, logger))
	}
	r.Use(chimw.RequestSize(opts.BodyLimit))
	r.Use(middleware.RequestContext)

	r.Get("/gateway-health", healthHandler(opts.Health))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/user-register", h.register)
		r.Post("/verify-otp", h.verifyRegistration)
		r.Post("/login-user", h.login)
		r.Post("/user-forget-password", h.forgotPassword)
		r.Post("/verify-forget-password-otp", h.verifyForgotPasswordOTP)
		r.Post("/reset-password-user", h.resetPassword)
		r.Post("/refresh-token-user", h.refreshToken)

		r.With(middleware.Guard(opts.Service, h.errors.write)).Get("/logged-in-user", h.loggedInUser)
	})

	return r
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				deps[c.Name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[c.Name] = "up"
		}

		msg := "Welcome to api-gateway!"
		if status != http.StatusOK {
			msg = "Some dependencies are unavailable."
		}
		writeJSON(w, status, map[string]any{"message": msg, "dependencies": deps})
	}
}
