package domain

import (
	"time"
)

// Brand represents a tenant brand owning categories and products.
type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBrandInput holds the parameters for creating a brand.
// Slug is optional; when omitted it is derived from Name.
type CreateBrandInput struct {
	Name string  `json:"name" validate:"required,min=1,max=255"`
	Slug *string `json:"slug" validate:"omitempty,max=255"`
}

// UpdateBrandInput holds the parameters for updating a brand.
// Nil fields are left unchanged.
type UpdateBrandInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slug *string `json:"slug" validate:"omitempty,max=255"`
}
