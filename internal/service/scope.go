package service

import (
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
)

// maxCreateAttempts bounds how often a create is retried after losing a
// slug uniqueness race before giving up with a conflict.
const maxCreateAttempts = 3

// Pagination bounds shared by every list operation.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// visibleBrand reports whether the actor may see rows owned by brandID.
func visibleBrand(actor domain.Actor, brandID string) bool {
	switch actor.Capability().VisibleScope {
	case domain.ScopeAll:
		return true
	case domain.ScopeOwnBrand:
		return actor.BrandID != nil && *actor.BrandID == brandID
	default:
		return false
	}
}

// scopeBrandFilter returns the effective brand filter for a list query and
// whether the actor can see any rows at all. Admins keep the requested
// filter; brand managers are forced onto their own brand and the requested
// value is ignored. A manager without a brand has an empty visible set.
func scopeBrandFilter(actor domain.Actor, requested *string) (*string, bool) {
	switch actor.Capability().VisibleScope {
	case domain.ScopeAll:
		return requested, true
	case domain.ScopeOwnBrand:
		if actor.BrandID == nil {
			return nil, false
		}
		return actor.BrandID, true
	default:
		return nil, false
	}
}

// clampPage normalizes 1-based pagination parameters.
func clampPage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
