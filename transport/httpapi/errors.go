package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrEthical07/otpauth"
)

const msgUnexpected = "An unexpected error occurred."

func statusFor(kind otpauth.ErrorKind) int {
	switch kind {
	case otpauth.KindValidation, otpauth.KindMissingFields, otpauth.KindOTPInvalid,
		otpauth.KindOTPLocked, otpauth.KindSamePassword:
		return http.StatusBadRequest
	case otpauth.KindConflict:
		return http.StatusConflict
	case otpauth.KindNotFound:
		return http.StatusNotFound
	case otpauth.KindRateLimited:
		return http.StatusTooManyRequests
	case otpauth.KindInvalidCredentials, otpauth.KindMissingToken,
		otpauth.KindInvalidToken, otpauth.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorWriter is the single boundary translator from errors to responses.
type errorWriter struct {
	logger      *zap.Logger
	development bool
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadJSON):
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Message: err.Error()})
		return
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Status: "error", Message: err.Error()})
		return
	}

	var domainErr *otpauth.Error
	if errors.As(err, &domainErr) && domainErr.Kind.Operational() {
		writeJSON(w, statusFor(domainErr.Kind), errorResponse{Status: "error", Message: domainErr.Message})
		return
	}

	e.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	resp := errorResponse{Status: "error", Message: msgUnexpected}
	if domainErr != nil && domainErr.Message != "" {
		resp.Message = domainErr.Message
	}
	if e.development {
		resp.Detail = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
