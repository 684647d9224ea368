package middleware

import (
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MrEthical07/otpauth"
)

// RequestContext copies the client IP and the chi request id into the
// request context so engine logs carry them. Run it after chi's RequestID
// and RealIP middleware.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otpauth.WithClientIP(r.Context(), ClientIP(r))
		if id := chimw.GetReqID(ctx); id != "" {
			ctx = otpauth.WithRequestID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP is the remote address without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
