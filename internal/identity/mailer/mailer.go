// Package mailer is the notification boundary for the identity service. The
// orchestrators hand it the fields to render; delivery transport lives behind
// the Mailer interface so tests and dev environments can swap it out.
package mailer

import "context"

// WelcomeMessage carries the fields rendered into the signup welcome mail.
type WelcomeMessage struct {
	Email          string
	OrganizationID string
	Token          string
}

// InviteMessage carries the fields rendered into a team invitation mail.
type InviteMessage struct {
	Email          string
	OrganizationID string
	Token          string
	Creator        string
	Role           string
}

// ResetMessage carries the fields rendered into a password reset mail.
type ResetMessage struct {
	Email          string
	OrganizationID string
	Token          string
}

// Mailer renders and delivers a message to an address. A returned error means
// the message was not handed off; orchestrators roll their transaction back
// on it.
type Mailer interface {
	SendWelcome(ctx context.Context, msg WelcomeMessage) error
	SendInvite(ctx context.Context, msg InviteMessage) error
	SendPasswordReset(ctx context.Context, msg ResetMessage) error
}
