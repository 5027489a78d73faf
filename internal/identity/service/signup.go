package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/mailer"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/idx"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

var (
	ErrSignupNotFound = errors.New("signup request not found")
	ErrSignupExpired  = errors.New("signup request has expired")
	ErrDispatchFailed = errors.New("failed to dispatch notification")
)

// SignupService runs the self-service signup workflow: a new organization and
// its owner user are created atomically with a pending signup record, and the
// welcome mail carrying the raw token is sent inside the same transaction so a
// failed dispatch rolls everything back.
type SignupService struct {
	Store  store.Store
	Mailer mailer.Mailer
}

// SignupResult is what a fresh signup produces. Token is the raw signup token
// that was mailed; the store only ever holds its fingerprint.
type SignupResult struct {
	OrganizationID string
	UserID         uuid.UUID
	Token          string
}

// Signup provisions a new organization with an owner user in the pending
// state and mails the completion link.
func (s *SignupService) Signup(ctx context.Context, email string) (SignupResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Generate the identifiers and the opaque token up front; nothing here
	// touches the database.
	orgID, err := domain.NewOrganizationID()
	if err != nil {
		log.Error("failed to generate organization id", slog.Any("error", err))
		return SignupResult{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate signup token", slog.Any("error", err))
		return SignupResult{}, err
	}

	now := time.Now()
	userID := uuid.New()
	signup := domain.PendingSignup{
		ID:             idx.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Email:          email,
		TokenHash:      cryptox.FingerprintToken(token),
		CreatedAt:      now,
	}

	// 2. Organization, user, and pending signup land in one transaction. The
	// welcome mail goes out before commit: if the mail bounces at the relay we
	// roll back and the caller retries cleanly. The inverse window (mail sent,
	// commit fails) leaves a dead link in the user's inbox, which a repeat
	// signup heals.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organizations().CreateOrganization(ctx, domain.Organization{
			ID:        orgID,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}

		if err := tx.Users().CreateUser(ctx, domain.User{
			ID:             userID,
			OrganizationID: orgID,
			Email:          email,
			Role:           domain.RoleOwner,
			CreatedAt:      now,
			UpdatedAt:      now,
		}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if err := tx.Signups().CreateSignup(ctx, signup); err != nil {
			return fmt.Errorf("create signup: %w", err)
		}

		if err := s.Mailer.SendWelcome(ctx, mailer.WelcomeMessage{
			Email:          email,
			OrganizationID: orgID,
			Token:          token,
		}); err != nil {
			log.Error("failed to send welcome mail",
				slog.String("org_id", orgID),
				slog.Any("error", err),
			)
			return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}

		return nil
	})
	if err != nil {
		return SignupResult{}, err
	}

	log.Info("signup created",
		slog.String("org_id", orgID),
		slog.String("user_id", userID.String()),
	)

	return SignupResult{
		OrganizationID: orgID,
		UserID:         userID,
		Token:          token,
	}, nil
}

// Verify reports whether a pending signup identified by the email/org/token
// triple exists and is still completable. It never consumes anything; the
// front end calls it before showing the set-password form.
func (s *SignupService) Verify(ctx context.Context, email, orgID, token string) (bool, error) {
	fingerprint := cryptox.FingerprintToken(token)

	signup, err := s.Store.Signups().FindSignup(ctx, email, orgID, fingerprint)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		slogx.FromContext(ctx).Error("failed to look up signup", slog.Any("error", err))
		return false, err
	}

	return !signup.Expired(time.Now()), nil
}

// Complete finishes a pending signup: the token is checked against its
// validity window, the user's password is set, and every pending signup for
// the user is consumed. The delete's affected-row count guards against a
// racing completion winning between our lookup and our delete.
func (s *SignupService) Complete(ctx context.Context, email, orgID, token, password string) error {
	log := slogx.FromContext(ctx)
	fingerprint := cryptox.FingerprintToken(token)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		signup, err := tx.Signups().FindSignup(ctx, email, orgID, fingerprint)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("signup completion with unknown token",
					slog.String("org_id", orgID),
				)
				return ErrSignupNotFound
			}
			log.Error("failed to look up signup", slog.Any("error", err))
			return err
		}

		if signup.Expired(time.Now()) {
			log.Warn("signup completion past validity window",
				slog.String("org_id", orgID),
				slog.Time("created_at", signup.CreatedAt),
			)
			return ErrSignupExpired
		}

		hash, err := cryptox.HashPassword(password)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return err
		}

		if err := tx.Users().UpdatePasswordHash(ctx, signup.UserID, hash); err != nil {
			return fmt.Errorf("set password: %w", err)
		}

		affected, err := tx.Signups().DeleteUserSignups(ctx, signup.UserID)
		if err != nil {
			return fmt.Errorf("consume signup: %w", err)
		}
		if affected == 0 {
			// Another completion raced us to the delete. Rolling back keeps
			// exactly one winner.
			return fmt.Errorf("signup already consumed for user %s", signup.UserID)
		}

		log.Info("signup completed",
			slog.String("org_id", orgID),
			slog.String("user_id", signup.UserID.String()),
		)
		return nil
	})
}
