package domain

import "fmt"

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleBrandManager Role = "BRAND_MANAGER"
)

// VisibleScope determines which rows of a brand-owned entity a role can see.
type VisibleScope int

const (
	// ScopeNone matches no rows. It is the zero value, so unknown roles
	// fall through to no visibility.
	ScopeNone VisibleScope = iota

	// ScopeOwnBrand matches rows whose brand equals the actor's brand.
	ScopeOwnBrand

	// ScopeAll matches every row.
	ScopeAll
)

// Capability describes what a role may see and change.
type Capability struct {
	VisibleScope VisibleScope
	CanWrite     bool
}

// Capability returns the capability table entry for the role.
func (r Role) Capability() Capability {
	switch r {
	case RoleAdmin:
		return Capability{VisibleScope: ScopeAll, CanWrite: true}
	case RoleBrandManager:
		return Capability{VisibleScope: ScopeOwnBrand, CanWrite: true}
	default:
		return Capability{}
	}
}

// ValidRoles returns the set of valid user roles.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleBrandManager}
}

// ParseRole converts a string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles() {
		if s == string(r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", s)
}
