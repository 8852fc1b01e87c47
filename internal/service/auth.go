package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/auth"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/ratelimit"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/repository"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// LoginInput holds the parameters for user login. IP feeds the rate
// limiter key alongside the email.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// AuthService implements login, refresh token rotation and logout.
type AuthService struct {
	users   repository.UserRepository
	tokens  repository.RefreshTokenRepository
	jwt     *auth.JWTManager
	limiter *ratelimit.LoginLimiter
	logger  *slog.Logger
}

// NewAuthService creates a new auth service. limiter may be nil when rate
// limiting is disabled.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	jwt *auth.JWTManager,
	limiter *ratelimit.LoginLimiter,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		jwt:     jwt,
		limiter: limiter,
		logger:  logger,
	}
}

// Login authenticates a user with email and password, returning the user
// and a token pair. An unknown email, a wrong password and a deactivated
// account all return the identical 401 so the response does not reveal
// which check failed.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	// Lowercase the email so case variants hit the same counter.
	key := strings.ToLower(input.Email) + "|" + input.IP
	if !s.limiter.Allow(ctx, key) {
		s.logger.WarnContext(ctx, "login rate limit exceeded",
			slog.String("email", input.Email),
			slog.String("ip", input.IP),
		)
		return nil, nil, apperrors.RateLimited("too many login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.limiter.Reset(ctx, key)

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Refresh validates a refresh token, rotates it and returns a new token
// pair. Presenting an already-consumed token revokes every live session
// for its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	tokenHash := hashToken(refreshToken)
	stored, err := s.tokens.GetByHash(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.Unauthorized("refresh token not found")
	}

	if stored.RevokedAt != nil {
		// A consumed token came back: treat it as stolen.
		if err := s.tokens.RevokeByUserID(ctx, stored.UserID); err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke sessions after token reuse",
				slog.String("user_id", stored.UserID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.WarnContext(ctx, "revoked refresh token reused",
			slog.String("user_id", stored.UserID),
		)
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}

	if time.Now().UTC().After(stored.ExpiresAt) {
		return nil, apperrors.Unauthorized("refresh token has expired")
	}

	// Revoke the old refresh token.
	if err := s.tokens.Revoke(ctx, tokenHash); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke old refresh token",
			slog.String("user_id", claims.UserID),
			slog.String("error", err.Error()),
		)
	}

	// Fetch the user for the new access token's claims.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user for token refresh: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated")
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return tokens, nil
}

// Logout revokes the presented refresh token. Empty and unknown tokens are
// no-ops so the operation stays idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}

	if err := s.tokens.Revoke(ctx, hashToken(refreshToken)); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke refresh token on logout",
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.InfoContext(ctx, "user logged out")
}

// generateTokenPair creates an access/refresh token pair and stores the
// refresh token hash.
func (s *AuthService) generateTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email, string(user.Role), user.BrandID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	// Store the refresh token hash in the database.
	tokenHash := hashToken(refreshToken)
	refreshClaims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("validate refresh token for expiry: %w", err)
	}

	if err := s.tokens.Create(ctx, user.ID, tokenHash, refreshClaims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken returns the SHA256 hex digest of the given token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
