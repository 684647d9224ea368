package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/otpauth"
)

// AccessTokenCookie is the cookie the guard reads first.
const AccessTokenCookie = "access_token"

// Authenticator resolves an access token to its user. *otpauth.Engine
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (otpauth.User, error)
}

// ErrorWriter renders a rejected request.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type userContextKey struct{}

// UserFromContext returns the user stored by [Guard].
func UserFromContext(ctx context.Context) (otpauth.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(otpauth.User)
	return u, ok
}

// Guard authenticates the request from the access_token cookie, falling back
// to an Authorization: Bearer header, and stores the user in the context.
// Rejections go to onError; nil selects a plain 401 JSON body.
func Guard(auth Authenticator, onError ErrorWriter) func(http.Handler) http.Handler {
	if onError == nil {
		onError = writeUnauthorized
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), accessToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	token, _ := bearerToken(r.Header.Get("Authorization"))
	return token
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "Unauthorized!"
	var e *otpauth.Error
	if errors.As(err, &e) && e.Message != "" {
		msg = e.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": msg})
}
