package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
)

// ErrSlugConflict reports a write that lost a slug uniqueness race. Services
// re-resolve the slug and retry on it; other unique violations are final.
var ErrSlugConflict = errors.New("slug conflict")

// ErrCodeConflict reports a QR code write that lost a short-code uniqueness
// race. The service generates a fresh code and retries.
var ErrCodeConflict = errors.New("code conflict")

// BrandFilter defines filter criteria for listing brands.
type BrandFilter struct {
	// ID restricts the result to a single brand (brand manager scope).
	ID       *string
	Page     int
	PageSize int
}

// CategoryFilter defines filter criteria for listing categories.
type CategoryFilter struct {
	BrandID   *string
	IsActive  *bool
	Name      *string // case-insensitive substring
	Search    *string // case-insensitive substring over name
	OrderBy   string  // validated column name
	OrderDesc bool
	Page      int
	PageSize  int
}

// ProductFilter defines filter criteria for listing products. CategoryID and
// CategorySlug are mutually exclusive; the slug variant joins through the
// categories table.
type ProductFilter struct {
	BrandID      *string
	CategoryID   *string
	CategorySlug *string
	IsActive     *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       *string // case-insensitive substring over name, sku
	OrderBy      string  // validated column name
	OrderDesc    bool
	Page         int
	PageSize     int
}

// BrandRepository defines the interface for brand persistence operations.
type BrandRepository interface {
	// Create inserts a new brand into the store.
	Create(ctx context.Context, brand *domain.Brand) error

	// GetByID retrieves a brand by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Brand, error)

	// GetBySlug retrieves a brand by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Brand, error)

	// List returns brands matching the filter along with the total count.
	List(ctx context.Context, filter BrandFilter) ([]domain.Brand, int, error)

	// Update modifies an existing brand in the store.
	Update(ctx context.Context, brand *domain.Brand) error

	// Delete removes a brand from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether a brand with the slug exists, optionally
	// excluding one brand id (used when updating).
	SlugExists(ctx context.Context, slug string, excludeID *string) (bool, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns categories matching the filter along with the total count.
	List(ctx context.Context, filter CategoryFilter) ([]domain.Category, int, error)

	// Update modifies an existing category in the store.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether the brand already has a category with the
	// slug, optionally excluding one category id (used when updating).
	SlugExists(ctx context.Context, brandID, slug string, excludeID *string) (bool, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether the brand already has a product with the
	// slug, optionally excluding one product id (used when updating).
	SlugExists(ctx context.Context, brandID, slug string, excludeID *string) (bool, error)

	// SetImagePaths stores the processed image paths for a product without
	// touching any other column.
	SetImagePaths(ctx context.Context, id string, image, imageSmall *string) error
}

// QRCodeRepository defines the interface for product QR code persistence operations.
type QRCodeRepository interface {
	// Create inserts a new QR code record into the store.
	Create(ctx context.Context, qr *domain.ProductQRCode) error

	// GetByProductID retrieves the QR code belonging to a product.
	GetByProductID(ctx context.Context, productID string) (*domain.ProductQRCode, error)

	// GetByCode retrieves a QR code record by its short code.
	GetByCode(ctx context.Context, code string) (*domain.ProductQRCode, error)

	// Update modifies an existing QR code record in the store.
	Update(ctx context.Context, qr *domain.ProductQRCode) error

	// CodeExists reports whether the short code is already taken.
	CodeExists(ctx context.Context, code string) (bool, error)
}
