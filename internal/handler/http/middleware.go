package http

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/auth"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/middleware"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
// Excludes multipart/form-data requests (used for product image uploads).
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/form-data") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json or multipart/form-data"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// tokenValidator bridges the JWT manager into the auth middleware contract.
func tokenValidator(jwtManager *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:  claims.UserID,
			Email:   claims.Email,
			Role:    claims.Role,
			BrandID: claims.BrandID,
		}, nil
	}
}

// actorFromContext rebuilds the authenticated actor from the claims the auth
// middleware stored. Only call it behind the strict auth middleware.
func actorFromContext(ctx context.Context) domain.Actor {
	actor := domain.Actor{
		UserID: middleware.UserIDFromContext(ctx),
		Email:  middleware.EmailFromContext(ctx),
		Role:   domain.Role(middleware.RoleFromContext(ctx)),
	}
	if brandID := middleware.BrandIDFromContext(ctx); brandID != "" {
		actor.BrandID = &brandID
	}
	return actor
}

// actorPtrFromContext returns the actor behind optional auth, or nil for
// anonymous requests.
func actorPtrFromContext(ctx context.Context) *domain.Actor {
	if middleware.UserIDFromContext(ctx) == "" {
		return nil
	}
	actor := actorFromContext(ctx)
	return &actor
}

// clientIP extracts the caller address for rate limit keys. RealIP has
// already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: message},
	})
}

func writeInvalidBody(w http.ResponseWriter, err error) {
	writeBadRequest(w, "INVALID_INPUT", "invalid request body: "+err.Error())
}
