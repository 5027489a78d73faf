package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the membership role a user holds in its organization. Only invites
// care about the distinction.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleStandard Role = "standard"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleStandard
}

// User belongs to exactly one organization. PasswordHash is empty until the
// signup (or invite acceptance) that first sets it; afterwards only password
// reset replaces it. Social-login users may never have one.
type User struct {
	ID             uuid.UUID
	OrganizationID string
	Email          string
	PasswordHash   string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity is the authenticated view of a user bound to a session.
type Identity struct {
	UserID         uuid.UUID
	OrganizationID string
	Email          string
	Role           Role
}
