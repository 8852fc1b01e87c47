package domain

import (
	"time"
)

// Category represents a product category owned by a brand. Name and Slug
// are unique within the brand, not globally.
type Category struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCategoryInput holds the parameters for creating a category.
// BrandID is required for admins and ignored for brand managers, whose own
// brand is always used.
type CreateCategoryInput struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Slug     *string `json:"slug" validate:"omitempty,max=255"`
	BrandID  *string `json:"brand_id" validate:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
}

// UpdateCategoryInput holds the parameters for updating a category.
// Nil fields are left unchanged; the owning brand cannot be changed.
type UpdateCategoryInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slug     *string `json:"slug" validate:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}
