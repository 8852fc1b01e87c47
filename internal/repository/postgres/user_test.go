package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
)

var userCols = []string{
	"id", "email", "password_hash", "role", "brand_id", "is_active",
	"created_at", "updated_at",
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:           "u-1234",
		Email:        "manager@acme.example",
		PasswordHash: "hash-abc",
		Role:         domain.RoleBrandManager,
		BrandID:      strPtr("brand-1"),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func userRow(u *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userCols).AddRow(
		u.ID, u.Email, u.PasswordHash, u.Role, u.BrandID, u.IsActive,
		u.CreatedAt, u.UpdatedAt,
	)
}

// ---------------------------------------------------------------------------
// UserRepository
// ---------------------------------------------------------------------------

func TestUserRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.Role, u.BrandID, u.IsActive,
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	u := sampleUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(
			u.ID, u.Email, u.PasswordHash, u.Role, u.BrandID, u.IsActive,
			u.CreatedAt, u.UpdatedAt,
		).
		WillReturnError(uniqueErr("users_email_key"))

	err := repo.Create(context.Background(), u)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Role, got.Role)
	assert.Equal(t, u.BrandID, got.BrandID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id =").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	u := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs(u.Email).
		WillReturnRows(userRow(u))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email =").
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// RefreshTokenRepository
// ---------------------------------------------------------------------------

var tokenCols = []string{
	"id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at",
}

func sampleToken() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        "rt-1",
		UserID:    "u-1234",
		TokenHash: "hash-of-refresh-token",
		ExpiresAt: now.Add(30 * 24 * time.Hour),
		CreatedAt: now,
		RevokedAt: nil,
	}
}

func tokenRow(rt *domain.RefreshToken) *pgxmock.Rows {
	return pgxmock.NewRows(tokenCols).AddRow(
		rt.ID, rt.UserID, rt.TokenHash, rt.ExpiresAt, rt.CreatedAt, rt.RevokedAt,
	)
}

func TestRefreshTokenRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	expiresAt := now.Add(30 * 24 * time.Hour)

	// The row id and created_at are generated inside Create.
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "u-1234", "hash-of-refresh-token", expiresAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), "u-1234", "hash-of-refresh-token", expiresAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	rt := sampleToken()

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs(rt.TokenHash).
		WillReturnRows(tokenRow(rt))

	got, err := repo.GetByHash(context.Background(), rt.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, rt.ID, got.ID)
	assert.Equal(t, rt.UserID, got.UserID)
	assert.Nil(t, got.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_Revoked(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	rt := sampleToken()
	revokedAt := now.Add(time.Hour)
	rt.RevokedAt = &revokedAt

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs(rt.TokenHash).
		WillReturnRows(tokenRow(rt))

	got, err := repo.GetByHash(context.Background(), rt.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	assert.Equal(t, revokedAt, *got.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs("unknown-hash").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByHash(context.Background(), "unknown-hash")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Revoke_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "hash-of-refresh-token").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Revoke(context.Background(), "hash-of-refresh-token")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Revoke_AlreadyRevoked(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	// Revoking an already revoked token touches zero rows and is not an error.
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "hash-of-refresh-token").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Revoke(context.Background(), "hash-of-refresh-token")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_RevokeByUserID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewRefreshTokenRepository(mock)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "u-1234").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.RevokeByUserID(context.Background(), "u-1234")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
