package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/pkg/idx"
)

// ResetValidity is how long a password reset request stays usable. Expired,
// consumed, and never-issued tokens are indistinguishable to callers.
const ResetValidity = time.Hour

// PasswordResetRequest is one forgot-password trigger. A user may hold any
// number of concurrent requests; a successful reset consumes them all.
type PasswordResetRequest struct {
	ID             idx.ID
	OrganizationID string
	UserID         uuid.UUID
	Email          string
	TokenHash      string
	CreatedAt      time.Time
}
