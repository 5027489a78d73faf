package http

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightbeamhq/identity/pkg/identitysdk"
)

func TestSignupLoginLogoutFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	signup, err := env.sdk.Signup(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signup.OrganizationID)

	welcome, ok := env.mails.LastWelcome()
	require.True(t, ok)

	valid, err := env.sdk.VerifySignup(ctx, "alice@example.com", signup.OrganizationID, welcome.Token)
	require.NoError(t, err)
	require.True(t, valid)

	require.NoError(t, env.sdk.CompleteSignup(ctx, "alice@example.com", signup.OrganizationID, welcome.Token, "correct-horse-1"))

	// The signup token is consumed; replay is rejected.
	err = env.sdk.CompleteSignup(ctx, "alice@example.com", signup.OrganizationID, welcome.Token, "other-password")
	require.True(t, identitysdk.IsCode(err, "invalid_grant"), "got %v", err)

	require.NoError(t, env.sdk.Login(ctx, "alice@example.com", "correct-horse-1"))

	session, err := env.sdk.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", session.Email)
	require.Equal(t, signup.OrganizationID, session.OrganizationID)
	require.Equal(t, "owner", session.Role)

	require.NoError(t, env.sdk.Logout(ctx))

	_, err = env.sdk.Session(ctx)
	require.True(t, identitysdk.IsCode(err, "invalid_session"), "got %v", err)
}

func TestLoginFailuresAnswerUniformly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	signup, err := env.sdk.Signup(ctx, "bob@example.com")
	require.NoError(t, err)
	welcome, _ := env.mails.LastWelcome()
	require.NoError(t, env.sdk.CompleteSignup(ctx, "bob@example.com", signup.OrganizationID, welcome.Token, "correct-horse-1"))

	err = env.sdk.Login(ctx, "bob@example.com", "wrong-password")
	require.True(t, identitysdk.IsCode(err, "invalid_credentials"), "got %v", err)

	err = env.sdk.Login(ctx, "nobody@example.com", "correct-horse-1")
	require.True(t, identitysdk.IsCode(err, "invalid_credentials"), "got %v", err)
}

func TestInviteFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Owner signs up and logs in.
	signup, err := env.sdk.Signup(ctx, "owner@example.com")
	require.NoError(t, err)
	welcome, _ := env.mails.LastWelcome()
	require.NoError(t, env.sdk.CompleteSignup(ctx, "owner@example.com", signup.OrganizationID, welcome.Token, "owner-password-1"))
	require.NoError(t, env.sdk.Login(ctx, "owner@example.com", "owner-password-1"))

	invite, err := env.sdk.Invite(ctx, "member@example.com", "standard")
	require.NoError(t, err)
	require.Equal(t, signup.OrganizationID, invite.OrganizationID)

	require.Len(t, env.mails.Invites, 1)
	inviteToken := env.mails.Invites[0].Token

	// The invitee uses its own client (fresh cookie jar).
	invitee, err := identitysdk.New(env.server.URL)
	require.NoError(t, err)

	accepted, err := invitee.AcceptInvite(ctx, "member@example.com", signup.OrganizationID, inviteToken, "member-password-1")
	require.NoError(t, err)
	require.Equal(t, "standard", accepted.Role)

	// Single use: a second acceptance is rejected.
	_, err = invitee.AcceptInvite(ctx, "member@example.com", signup.OrganizationID, inviteToken, "member-password-2")
	require.True(t, identitysdk.IsCode(err, "invalid_grant"), "got %v", err)

	require.NoError(t, invitee.Login(ctx, "member@example.com", "member-password-1"))
	session, err := invitee.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "standard", session.Role)
}

func TestInviteRequiresSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.sdk.Invite(ctx, "member@example.com", "standard")
	require.True(t, identitysdk.IsCode(err, "invalid_session"), "got %v", err)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	signup, err := env.sdk.Signup(ctx, "carol@example.com")
	require.NoError(t, err)
	welcome, _ := env.mails.LastWelcome()
	require.NoError(t, env.sdk.CompleteSignup(ctx, "carol@example.com", signup.OrganizationID, welcome.Token, "old-password-1"))

	require.NoError(t, env.sdk.ForgotPassword(ctx, "carol@example.com"))
	require.Len(t, env.mails.Resets, 1)
	resetToken := env.mails.Resets[0].Token

	require.NoError(t, env.sdk.ResetPassword(ctx, "carol@example.com", signup.OrganizationID, resetToken, "new-password-1"))

	err = env.sdk.Login(ctx, "carol@example.com", "old-password-1")
	require.True(t, identitysdk.IsCode(err, "invalid_credentials"), "got %v", err)

	require.NoError(t, env.sdk.Login(ctx, "carol@example.com", "new-password-1"))

	// The consumed token cannot be replayed.
	err = env.sdk.ResetPassword(ctx, "carol@example.com", signup.OrganizationID, resetToken, "new-password-2")
	require.True(t, identitysdk.IsCode(err, "invalid_grant"), "got %v", err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.sdk.ForgotPassword(ctx, "nobody@example.com")
	require.True(t, identitysdk.IsCode(err, "invalid_request"), "got %v", err)
}

func TestHealthEndpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	health, err := env.sdk.Health(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)
}
