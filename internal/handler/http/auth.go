package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/validator"
)

// refreshCookieName is the refresh token cookie. It is scoped to the auth
// endpoints so the token never rides along on API calls.
const refreshCookieName = "refresh_token"

const refreshCookiePath = "/api/auth"

// CookieOptions control the refresh token cookie attributes. Secure selects
// SameSite=None with the Secure flag; development keeps SameSite=Lax over
// plain HTTP.
type CookieOptions struct {
	Domain string
	Secure bool
	MaxAge int
}

// AuthHandler handles HTTP requests for login, token refresh and logout.
type AuthHandler struct {
	service *service.AuthService
	cookie  CookieOptions
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, cookie CookieOptions, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		cookie:  cookie,
		logger:  logger,
	}
}

// --- Request DTOs ---

// LoginRequest is the JSON request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Response shapes ---

type userPayload struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Role    string  `json:"role"`
	BrandID *string `json:"brand_id"`
}

type loginResponse struct {
	Access string      `json:"access"`
	User   userPayload `json:"user"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// --- Handlers ---

// Login handles POST /api/auth/login. The access token is returned in the
// body; the refresh token travels only in the HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w, err)
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       clientIP(r),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Access: tokens.AccessToken,
		User: userPayload{
			ID:      user.ID,
			Email:   user.Email,
			Role:    string(user.Role),
			BrandID: user.BrandID,
		},
	})
}

// Refresh handles POST /api/auth/refresh. The rotated refresh token
// replaces the cookie; reuse of an already-rotated token fails 401.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "refresh token cookie missing"},
		})
		return
	}

	tokens, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w)
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, refreshResponse{Access: tokens.AccessToken})
}

// Logout handles POST /api/auth/logout. Always succeeds and always clears
// the cookie, with or without a live session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		h.service.Logout(r.Context(), cookie.Value)
	}

	h.clearRefreshCookie(w)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, h.refreshCookie(token, h.cookie.MaxAge))
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.refreshCookie("", -1))
}

func (h *AuthHandler) refreshCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     refreshCookiePath,
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cookie.Secure {
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}
