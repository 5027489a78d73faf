package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and it is the unit of atomicity for the orchestrators: every
// multi-row write happens through WithTx.
type Store interface {
	Organizations() Organizations
	Users() Users
	Signups() Signups
	Invites() Invites
	PasswordResets() PasswordResets
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed. Note the ordering this
	// implies for the orchestrators: side effects performed inside fn happen
	// before commit, and a commit failure after a side effect is surfaced to
	// the caller as a persistence error, not compensated.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Organizations interface {
	// CreateOrganization inserts a new organization (id is the slug).
	CreateOrganization(ctx context.Context, org domain.Organization) error

	// GetOrganizationByID fetches an organization by slug.
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
}

type Users interface {
	// CreateUser inserts a new user. Email is unique within the organization.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID fetches a user by id.
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetUserByEmail fetches the oldest user holding the email across
	// organizations. Used by login and forgot-password.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, newHash string) error
}

type Signups interface {
	// CreateSignup writes a pending signup (token_hash is the fingerprint of
	// the opaque signup token).
	CreateSignup(ctx context.Context, s domain.PendingSignup) error

	// FindSignup returns the pending signup matching all three of email,
	// organization, and token fingerprint.
	FindSignup(ctx context.Context, email, orgID, tokenHash string) (domain.PendingSignup, error)

	// DeleteUserSignups removes every pending signup for the user and reports
	// how many rows went away. Callers use the count as an optimistic guard
	// against racing completions.
	DeleteUserSignups(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpiredSignups is housekeeping for signups past their window.
	DeleteExpiredSignups(ctx context.Context) error
}

type Invites interface {
	// CreateInvite writes a new team invite.
	CreateInvite(ctx context.Context, inv domain.TeamInvite) error

	// FindInvite returns the invite matching email, organization, and token
	// fingerprint.
	FindInvite(ctx context.Context, email, orgID, tokenHash string) (domain.TeamInvite, error)

	// ConsumeInvite deletes the invite and reports whether a row was
	// affected. Exactly-once acceptance hangs off this count.
	ConsumeInvite(ctx context.Context, id idx.ID) (int64, error)
}

type PasswordResets interface {
	// CreateReset writes a new password reset request. Multiple live
	// requests per user are allowed.
	CreateReset(ctx context.Context, r domain.PasswordResetRequest) error

	// FindValidReset returns the request matching email, organization, and
	// token fingerprint, created at or after notBefore. Expired, consumed,
	// and never-issued tokens all come back ErrNotFound.
	FindValidReset(ctx context.Context, email, orgID, tokenHash string, notBefore time.Time) (domain.PasswordResetRequest, error)

	// DeleteUserResets removes every reset request for the user and reports
	// the affected row count.
	DeleteUserResets(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpiredResets is housekeeping for stale requests.
	DeleteExpiredResets(ctx context.Context) error
}

type Sessions interface {
	// CreateSession stores a new session keyed by token fingerprint.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns a live (unexpired) session.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// DeleteSessionByTokenHash revokes a session. Deleting an unknown or
	// already-revoked session is not an error.
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteUserSessions removes every session for the user.
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredSessions is housekeeping for expired sessions.
	DeleteExpiredSessions(ctx context.Context) error
}
