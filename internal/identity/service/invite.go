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
	ErrInvalidRole    = errors.New("invalid role")
	ErrInviteNotFound = errors.New("invite not found")
	ErrEmailTaken     = errors.New("email already registered in organization")
)

// InviteService brings additional users into an existing organization. Invites
// are single-use: acceptance deletes the row, and the affected-row count of
// that delete is the arbiter when two acceptances race.
type InviteService struct {
	Store  store.Store
	Mailer mailer.Mailer
}

// Invite creates an invitation for inviteeEmail to join the creator's
// organization with the given role, and mails the acceptance link. The mail
// goes out inside the transaction so a dispatch failure leaves no orphaned
// invite behind.
func (s *InviteService) Invite(ctx context.Context, creator domain.User, inviteeEmail string, role domain.Role) (domain.TeamInvite, error) {
	log := slogx.FromContext(ctx)

	if !role.Valid() {
		log.Warn("invite with unknown role",
			slog.String("org_id", creator.OrganizationID),
			slog.String("role", string(role)),
		)
		return domain.TeamInvite{}, ErrInvalidRole
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return domain.TeamInvite{}, err
	}

	invite := domain.TeamInvite{
		ID:             idx.New(),
		OrganizationID: creator.OrganizationID,
		CreatorID:      creator.ID,
		Email:          inviteeEmail,
		Token:          token,
		TokenHash:      cryptox.FingerprintToken(token),
		Role:           role,
		CreatedAt:      time.Now(),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().CreateInvite(ctx, invite); err != nil {
			return fmt.Errorf("create invite: %w", err)
		}

		if err := s.Mailer.SendInvite(ctx, mailer.InviteMessage{
			Email:          inviteeEmail,
			OrganizationID: invite.OrganizationID,
			Token:          token,
			Creator:        creator.Email,
			Role:           string(role),
		}); err != nil {
			log.Error("failed to send invite mail",
				slog.String("org_id", invite.OrganizationID),
				slog.Any("error", err),
			)
			return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}

		return nil
	})
	if err != nil {
		return domain.TeamInvite{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", invite.ID.String()),
		slog.String("org_id", invite.OrganizationID),
		slog.String("role", string(role)),
	)

	return invite, nil
}

// Accept consumes an invite and creates the invited user with the role the
// invite carries, password already set. Exactly one acceptance can win.
func (s *InviteService) Accept(ctx context.Context, email, orgID, token, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)
	fingerprint := cryptox.FingerprintToken(token)

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		invite, err := tx.Invites().FindInvite(ctx, email, orgID, fingerprint)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("invite acceptance with unknown token",
					slog.String("org_id", orgID),
				)
				return ErrInviteNotFound
			}
			log.Error("failed to look up invite", slog.Any("error", err))
			return err
		}

		affected, err := tx.Invites().ConsumeInvite(ctx, invite.ID)
		if err != nil {
			return fmt.Errorf("consume invite: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("invite %s already consumed", invite.ID)
		}

		hash, err := cryptox.HashPassword(password)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return err
		}

		now := time.Now()
		user = domain.User{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Email:          email,
			PasswordHash:   hash,
			Role:           invite.Role,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				log.Warn("invite acceptance for already registered email",
					slog.String("org_id", orgID),
				)
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("invite accepted",
		slog.String("org_id", orgID),
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}
