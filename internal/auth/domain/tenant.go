package domain

import "time"

type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
	CreatedBy string // uid of the creating user
}

type MembershipRole string

const (
	RoleAdmin    MembershipRole = "admin"
	RoleManager  MembershipRole = "manager"
	RoleEmployee MembershipRole = "employee"
)

// Valid reports whether r is one of the known roles.
func (r MembershipRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

// Membership proves a user belongs to a tenant. The membership document is
// the sole source of truth for belonging; a user's cached default tenant
// pointer never is.
type Membership struct {
	TenantID string
	UID      string
	Email    string
	Role     MembershipRole
	JoinedAt time.Time
}
