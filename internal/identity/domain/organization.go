package domain

import (
	"crypto/rand"
	"time"

	"github.com/lightbeamhq/identity/pkg/idx"
)

// Organization is the tenant boundary. The id is a short subdomain-safe slug
// generated at signup and immutable afterwards.
type Organization struct {
	ID        string
	CreatedAt time.Time
}

const orgIDBytes = 6

// NewOrganizationID returns a random 10-character lowercase base32 slug.
func NewOrganizationID() (string, error) {
	buf := make([]byte, orgIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return idx.EncodeBase32Lower(buf), nil
}
