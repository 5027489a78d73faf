package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

var (
	ErrStateMismatch  = errors.New("oauth state mismatch")
	ErrExchangeFailed = errors.New("oauth code exchange failed")
)

// stateTokenLength is the length of the random prefix of the state parameter:
// a TokenSize128 token base64url-encodes to exactly 22 characters. Whatever
// follows the prefix is the post-login destination path.
const stateTokenLength = 22

// GoogleService handles the authorization-code flow against Google. The state
// parameter doubles as CSRF token and destination carrier: its random prefix
// is echoed in a cookie and must match byte for byte before any code is
// exchanged.
type GoogleService struct {
	Store    store.Store
	Sessions *SessionService
	OAuth    *oauth2.Config
}

// SignIn builds the provider redirect. It returns the authorization URL and
// the full state value the handler must also set as a cookie.
func (s *GoogleService) SignIn(ctx context.Context, destination string) (authURL, state string, err error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to generate state token", slog.Any("error", err))
		return "", "", err
	}

	state = token + destination
	return s.OAuth.AuthCodeURL(state), state, nil
}

// Callback completes the flow: the returned state must equal the cookie copy
// exactly, then the code is exchanged for tokens and the id_token's email
// claim resolves (or provisions) the local user. On success a session is
// issued and the destination recovered from the state is returned.
func (s *GoogleService) Callback(ctx context.Context, state, cookieState, code string) (domain.Session, string, error) {
	log := slogx.FromContext(ctx)

	// The mismatch check happens before anything touches the provider. A
	// forged or replayed callback never costs us a code exchange.
	if state == "" || cookieState == "" ||
		subtle.ConstantTimeCompare([]byte(state), []byte(cookieState)) != 1 {
		log.Warn("oauth callback state mismatch")
		return domain.Session{}, "", ErrStateMismatch
	}

	token, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		log.Error("oauth code exchange failed", slog.Any("error", err))
		return domain.Session{}, "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	email, err := emailFromIDToken(token)
	if err != nil {
		log.Error("failed to extract email from id_token", slog.Any("error", err))
		return domain.Session{}, "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return domain.Session{}, "", err
	}

	session, err := s.Sessions.Issue(ctx, user)
	if err != nil {
		return domain.Session{}, "", err
	}

	return session, destinationFromState(state), nil
}

// emailFromIDToken pulls the email claim out of the id_token. The token
// arrived directly from the provider's token endpoint over TLS, so the
// signature is not re-verified here.
func emailFromIDToken(token *oauth2.Token) (string, error) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("token response carries no id_token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("decode id_token: %w", err)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", errors.New("id_token carries no email claim")
	}
	return email, nil
}

// findOrCreateUser maps the federated email to a local user, provisioning a
// fresh single-user organization on first sign-in. Federated users carry no
// password hash.
func (s *GoogleService) findOrCreateUser(ctx context.Context, email string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to look up user", slog.Any("error", err))
		return domain.User{}, err
	}

	orgID, err := domain.NewOrganizationID()
	if err != nil {
		log.Error("failed to generate organization id", slog.Any("error", err))
		return domain.User{}, err
	}

	now := time.Now()
	user = domain.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		Role:           domain.RoleOwner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organizations().CreateOrganization(ctx, domain.Organization{
			ID:        orgID,
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("federated user provisioned",
		slog.String("org_id", orgID),
		slog.String("user_id", user.ID.String()),
	)
	return user, nil
}

// destinationFromState strips the random prefix off the state, leaving the
// destination path. Anything that does not look like a local path falls back
// to the root so the redirect can never leave the site.
func destinationFromState(state string) string {
	if len(state) <= stateTokenLength {
		return "/"
	}
	dest := state[stateTokenLength:]
	if !strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "//") {
		return "/"
	}
	return dest
}
