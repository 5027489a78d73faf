package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/idx"
)

func TestHousekeepingRemovesExpiredRecords(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	user := seedUser(t, st, "stale@example.com", "old-password-1", domain.RoleOwner)

	staleSignup := cryptox.MustGenerateToken(cryptox.TokenSize128)
	require.NoError(t, st.Signups().CreateSignup(ctx, domain.PendingSignup{
		ID:             idx.New(),
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		Email:          user.Email,
		TokenHash:      cryptox.FingerprintToken(staleSignup),
		CreatedAt:      time.Now().Add(-domain.SignupValidity - time.Hour),
	}))

	staleReset := cryptox.MustGenerateToken(cryptox.TokenSize128)
	require.NoError(t, st.PasswordResets().CreateReset(ctx, domain.PasswordResetRequest{
		ID:             idx.New(),
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		Email:          user.Email,
		TokenHash:      cryptox.FingerprintToken(staleReset),
		CreatedAt:      time.Now().Add(-domain.ResetValidity - time.Hour),
	}))

	staleSession := cryptox.MustGenerateToken(cryptox.TokenSize256)
	require.NoError(t, st.Sessions().CreateSession(ctx, domain.Session{
		ID:             staleSession,
		TokenHash:      cryptox.FingerprintToken(staleSession),
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		CreatedAt:      time.Now().Add(-48 * time.Hour),
		ExpiresAt:      time.Now().Add(-time.Hour),
	}))

	svc := NewHousekeepingService(st, slog.Default(), time.Hour)
	svc.cleanup()

	_, err := st.Signups().FindSignup(ctx, user.Email, user.OrganizationID, cryptox.FingerprintToken(staleSignup))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.PasswordResets().FindValidReset(ctx, user.Email, user.OrganizationID, cryptox.FingerprintToken(staleReset), time.Now().Add(-domain.ResetValidity))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(staleSession))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	st := newTestStore(t)

	svc := NewHousekeepingService(st, slog.Default(), time.Hour)
	svc.Start()
	svc.Stop()
}
