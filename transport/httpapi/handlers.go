package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/middleware"
)

type handler struct {
	svc     Service
	cookies CookieConfig
	errors  errorWriter
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyResetRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type userView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toUserView(u otpauth.User) userView {
	return userView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req otpauth.RegisterRequest
	if err := decode(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	if err := h.svc.Register(r.Context(), req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP sent to email for verification.")
}

func (h *handler) verifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req otpauth.VerifyRegistrationRequest
	if err := decode(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	if _, err := h.svc.VerifyRegistration(r.Context(), req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "User registered successfully.")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	h.cookies.set(w, refreshTokenCookie, res.Session.RefreshToken, res.Session.RefreshTTL)
	h.cookies.set(w, accessTokenCookie, res.Session.AccessToken, res.Session.AccessTTL)
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful.",
		ID:      res.User.ID,
		Name:    res.User.Name,
		Email:   res.User.Email,
	})
}

func (h *handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP sent to email. Please verify your account.")
}

func (h *handler) verifyForgotPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyResetRequest
	if err := decode(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	if err := h.svc.VerifyPasswordResetOTP(r.Context(), req.Email, req.OTP); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP verified. You can now reset your password.")
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req otpauth.ResetPasswordRequest
	if err := decode(r, &req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successfully.")
}

func (h *handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		token = c.Value
	}

	access, _, err := h.svc.RefreshAccess(r.Context(), token)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	h.cookies.set(w, accessTokenCookie, access, h.svc.AccessTTL())
	writeMessage(w, http.StatusOK, "Access token refreshed successfully.")
}

func (h *handler) loggedInUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errors.write(w, r, otpauth.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, map[string]userView{"user": toUserView(user)})
}
