package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/pkg/idx"
)

// TeamInvite invites an email address into an existing organization with an
// assigned role. Single-use: acceptance consumes the row exactly once.
type TeamInvite struct {
	ID             idx.ID
	OrganizationID string
	CreatorID      uuid.UUID
	Email          string
	// Token is the raw opaque invite token. Populated only on creation; the
	// store keeps the fingerprint.
	Token     string
	TokenHash string
	Role      Role
	CreatedAt time.Time
}
