package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie the session id travels in. The inbound
// layer sets path/httpOnly/secure attributes; the value is ours.
const SessionCookieName = "SessionId"

// Session maps an opaque unguessable id to an authenticated user. The raw id
// lives only in the client cookie; the store keeps its fingerprint.
type Session struct {
	// ID is the raw opaque session id. Populated only on issue; lookups
	// operate on the fingerprint.
	ID             string
	TokenHash      string
	UserID         uuid.UUID
	OrganizationID string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}
