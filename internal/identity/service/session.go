package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

// ErrInvalidCredentials covers every login failure mode: unknown email, no
// password set, wrong password. Callers cannot tell them apart.
var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultSessionTTL is the session lifetime used when none is configured.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionService issues and resolves opaque session ids. The raw id lives
// only in the client's cookie; the store keeps a SHA-256 fingerprint, so a
// database leak exposes nothing replayable.
type SessionService struct {
	Store store.Store

	// TTL is the session lifetime. Zero means DefaultSessionTTL.
	TTL time.Duration
}

// Login verifies the email/password pair and issues a session.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login with unknown email")
			return domain.Session{}, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.Any("error", err))
		return domain.Session{}, err
	}

	// Social-login users have no password hash; they cannot log in this way.
	if user.PasswordHash == "" {
		log.Warn("login against account without a password",
			slog.String("user_id", user.ID.String()),
		)
		return domain.Session{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login with wrong password",
			slog.String("user_id", user.ID.String()),
		)
		return domain.Session{}, ErrInvalidCredentials
	}

	return s.Issue(ctx, user)
}

// Issue creates a session for an already-authenticated user. Login and the
// federated callback both end here.
func (s *SessionService) Issue(ctx context.Context, user domain.User) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate session id", slog.Any("error", err))
		return domain.Session{}, err
	}

	now := time.Now()
	session := domain.Session{
		ID:             id,
		TokenHash:      cryptox.FingerprintToken(id),
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl()),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		log.Error("failed to store session", slog.Any("error", err))
		return domain.Session{}, err
	}

	log.Info("session issued",
		slog.String("user_id", user.ID.String()),
		slog.String("org_id", user.OrganizationID),
		slog.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

// Lookup resolves a raw session id to the identity it authenticates. An
// unknown, expired, or orphaned session comes back (zero, false, nil); errors
// are reserved for store failures.
func (s *SessionService) Lookup(ctx context.Context, sessionID string) (domain.Identity, bool, error) {
	fingerprint := cryptox.FingerprintToken(sessionID)

	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, false, nil
		}
		slogx.FromContext(ctx).Error("failed to look up session", slog.Any("error", err))
		return domain.Identity{}, false, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// User deleted out from under a live session.
			return domain.Identity{}, false, nil
		}
		slogx.FromContext(ctx).Error("failed to load session user", slog.Any("error", err))
		return domain.Identity{}, false, err
	}

	return domain.Identity{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		Role:           user.Role,
	}, true, nil
}

// Revoke deletes the session for a raw id. Revoking an unknown or already
// revoked session succeeds quietly so logout is idempotent.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	fingerprint := cryptox.FingerprintToken(sessionID)
	if err := s.Store.Sessions().DeleteSessionByTokenHash(ctx, fingerprint); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke session", slog.Any("error", err))
		return err
	}
	return nil
}

// RevokeUser deletes every session the user holds. Exposed for hardening
// hooks (password reset, account compromise).
func (s *SessionService) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.Store.Sessions().DeleteUserSessions(ctx, userID); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke user sessions",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}
