package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/mailer"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/cryptox"
)

func TestInviteAndAcceptCreatesTeamMember(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	rec := &mailer.Recorder{}
	svc := &InviteService{Store: st, Mailer: rec}

	owner := seedUser(t, st, "owner@example.com", "owner-password", domain.RoleOwner)

	invite, err := svc.Invite(ctx, owner, "new@example.com", domain.RoleStandard)
	require.NoError(t, err)
	require.NotEmpty(t, invite.Token)
	require.Equal(t, owner.OrganizationID, invite.OrganizationID)

	require.Len(t, rec.Invites, 1)
	require.Equal(t, invite.Token, rec.Invites[0].Token)
	require.Equal(t, "owner@example.com", rec.Invites[0].Creator)

	user, err := svc.Accept(ctx, "new@example.com", owner.OrganizationID, invite.Token, "member-password")
	require.NoError(t, err)
	require.Equal(t, domain.RoleStandard, user.Role)
	require.Equal(t, owner.OrganizationID, user.OrganizationID)

	stored, err := st.Users().GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("member-password", stored.PasswordHash))
}

func TestInviteAcceptanceIsSingleUse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st, Mailer: &mailer.Recorder{}}

	owner := seedUser(t, st, "owner@example.com", "owner-password", domain.RoleOwner)

	invite, err := svc.Invite(ctx, owner, "new@example.com", domain.RoleStandard)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "new@example.com", owner.OrganizationID, invite.Token, "first-password")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "new@example.com", owner.OrganizationID, invite.Token, "second-password")
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st, Mailer: &mailer.Recorder{}}

	owner := seedUser(t, st, "owner@example.com", "owner-password", domain.RoleOwner)

	_, err := svc.Invite(ctx, owner, "new@example.com", domain.Role("superadmin"))
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestInviteRollsBackWhenMailFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	rec := &mailer.Recorder{FailWith: errors.New("relay down")}
	svc := &InviteService{Store: st, Mailer: rec}

	owner := seedUser(t, st, "owner@example.com", "owner-password", domain.RoleOwner)

	invite, err := svc.Invite(ctx, owner, "new@example.com", domain.RoleStandard)
	require.ErrorIs(t, err, ErrDispatchFailed)
	require.Empty(t, invite.Token)
	require.Empty(t, rec.Invites)
}

func TestAcceptRejectsAlreadyRegisteredEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st, Mailer: &mailer.Recorder{}}

	owner := seedUser(t, st, "owner@example.com", "owner-password", domain.RoleOwner)

	invite, err := svc.Invite(ctx, owner, "owner@example.com", domain.RoleStandard)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "owner@example.com", owner.OrganizationID, invite.Token, "whatever-password")
	require.ErrorIs(t, err, ErrEmailTaken)

	// The failed acceptance rolled back, so the invite is still redeemable
	// for a different outcome only through the same guard; it must not have
	// been half-consumed.
	_, err = st.Invites().FindInvite(ctx, "owner@example.com", owner.OrganizationID, cryptox.FingerprintToken(invite.Token))
	require.NoError(t, err)
}

func TestAcceptUnknownToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st, Mailer: &mailer.Recorder{}}

	owner := seedUser(t, st, "owner@example.com", "owner-password", domain.RoleOwner)

	_, err := svc.Accept(ctx, "new@example.com", owner.OrganizationID, "bogus-token", "whatever-password")
	require.ErrorIs(t, err, ErrInviteNotFound)

	_, err = st.Users().GetUserByEmail(ctx, "new@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
