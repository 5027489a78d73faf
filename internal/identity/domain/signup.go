package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/pkg/idx"
)

// SignupValidity is how long a pending signup can be completed.
const SignupValidity = 24 * time.Hour

// PendingSignup holds the organization/user pair created at signup until the
// user sets a password. TokenHash is the SHA-256 fingerprint of the opaque
// token mailed to the user; the raw token is never stored.
type PendingSignup struct {
	ID             idx.ID
	OrganizationID string
	UserID         uuid.UUID
	Email          string
	TokenHash      string
	CreatedAt      time.Time
}

// Expired reports whether the signup can no longer be completed at now.
func (p PendingSignup) Expired(now time.Time) bool {
	return now.After(p.CreatedAt.Add(SignupValidity))
}
