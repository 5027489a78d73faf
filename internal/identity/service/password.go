package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/mailer"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/idx"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrResetNotFound = errors.New("password reset request not found or expired")
)

// PasswordService runs the forgot/reset workflow. A user may hold any number
// of live reset requests at once; a successful reset consumes all of them.
// Expired, consumed, and never-issued tokens are indistinguishable to callers
// so the reset endpoint leaks nothing about token history.
type PasswordService struct {
	Store  store.Store
	Mailer mailer.Mailer
}

// Forgot records a password reset request for the account holding email and
// mails the reset link. The mail is sent inside the transaction; a dispatch
// failure rolls the request back.
func (s *PasswordService) Forgot(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("password reset requested for unknown email")
			return ErrUserNotFound
		}
		log.Error("failed to look up user", slog.Any("error", err))
		return err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return err
	}

	request := domain.PasswordResetRequest{
		ID:             idx.New(),
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		Email:          email,
		TokenHash:      cryptox.FingerprintToken(token),
		CreatedAt:      time.Now(),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().CreateReset(ctx, request); err != nil {
			return fmt.Errorf("create reset request: %w", err)
		}

		if err := s.Mailer.SendPasswordReset(ctx, mailer.ResetMessage{
			Email:          email,
			OrganizationID: user.OrganizationID,
			Token:          token,
		}); err != nil {
			log.Error("failed to send reset mail",
				slog.String("org_id", user.OrganizationID),
				slog.Any("error", err),
			)
			return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info("password reset requested",
		slog.String("org_id", user.OrganizationID),
		slog.String("user_id", user.ID.String()),
	)
	return nil
}

// Reset replaces the user's password given a live reset token and consumes
// every outstanding request for the user. The validity window is enforced in
// the lookup itself: anything older than ResetValidity is simply not found.
func (s *PasswordService) Reset(ctx context.Context, email, orgID, token, newPassword string) error {
	log := slogx.FromContext(ctx)
	fingerprint := cryptox.FingerprintToken(token)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		notBefore := time.Now().Add(-domain.ResetValidity)
		request, err := tx.PasswordResets().FindValidReset(ctx, email, orgID, fingerprint, notBefore)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("password reset with unknown or expired token",
					slog.String("org_id", orgID),
				)
				return ErrResetNotFound
			}
			log.Error("failed to look up reset request", slog.Any("error", err))
			return err
		}

		hash, err := cryptox.HashPassword(newPassword)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return err
		}

		if err := tx.Users().UpdatePasswordHash(ctx, request.UserID, hash); err != nil {
			return fmt.Errorf("set password: %w", err)
		}

		affected, err := tx.PasswordResets().DeleteUserResets(ctx, request.UserID)
		if err != nil {
			return fmt.Errorf("consume reset requests: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("reset requests already consumed for user %s", request.UserID)
		}

		log.Info("password reset",
			slog.String("org_id", orgID),
			slog.String("user_id", request.UserID.String()),
		)
		return nil
	})
}
