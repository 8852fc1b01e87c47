package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product owned by a brand. Slug and SKU are
// unique within the brand. Image and ImageSmall hold storage paths of the
// processed image variants.
type Product struct {
	ID          string          `json:"id"`
	BrandID     string          `json:"brand_id"`
	CategoryID  *string         `json:"category_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	Image       *string         `json:"image"`
	ImageSmall  *string         `json:"image_small"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateProductInput holds the parameters for creating a product.
// BrandID is required for admins and ignored for brand managers. ImageData
// carries the raw upload bytes when the request is multipart.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Slug        *string         `json:"slug" validate:"omitempty,max=255"`
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Description string          `json:"description"`
	BrandID     *string         `json:"brand_id" validate:"omitempty,uuid"`
	CategoryID  *string         `json:"category_id" validate:"omitempty,uuid"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"is_active"`
	ImageData   []byte          `json:"-"`
	ImageName   string          `json:"-"`
}

// UpdateProductInput holds the parameters for updating a product.
// Nil fields are left unchanged; the owning brand cannot be changed.
// An empty CategoryID clears the category.
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Slug        *string          `json:"slug" validate:"omitempty,max=255"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"is_active"`
	ImageData   []byte           `json:"-"`
	ImageName   string           `json:"-"`
}

// Price column bounds, mirroring NUMERIC(10,2).
const (
	PriceMaxIntegerDigits = 8
	PriceDecimalPlaces    = 2
)

// ValidatePrice enforces the price contract: non-negative, at most two
// decimal places, at most eight digits before the decimal point.
func ValidatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if p.Exponent() < -PriceDecimalPlaces {
		return fmt.Errorf("price must have at most %d decimal places", PriceDecimalPlaces)
	}
	if p.Truncate(0).NumDigits() > PriceMaxIntegerDigits {
		return fmt.Errorf("price must have at most %d digits before the decimal point", PriceMaxIntegerDigits)
	}
	return nil
}
