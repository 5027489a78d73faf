package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/store"
)

// fakeProvider is a stand-in token endpoint. It counts exchanges so tests can
// prove the mismatch path never reaches the provider.
type fakeProvider struct {
	server    *httptest.Server
	exchanges atomic.Int64
	email     string
}

func newFakeProvider(t *testing.T, email string) *fakeProvider {
	t.Helper()

	p := &fakeProvider{email: email}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		p.exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     unsignedIDToken(t, p.email),
		})
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost/v1/sso/google/oauth2callback",
		Scopes:       []string{"openid", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.server.URL + "/auth",
			TokenURL: p.server.URL + "/token",
		},
	}
}

// unsignedIDToken builds a JWT-shaped id_token with an empty signature. The
// callback decodes claims without verifying, so this is enough.
func unsignedIDToken(t *testing.T, email string) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims, err := json.Marshal(map[string]any{
		"iss":   "https://accounts.google.com",
		"aud":   "test-client",
		"email": email,
	})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(claims) + "."
}

func newGoogleService(t *testing.T, provider *fakeProvider) (*GoogleService, store.Store) {
	t.Helper()

	st := newTestStore(t)
	return &GoogleService{
		Store:    st,
		Sessions: &SessionService{Store: st},
		OAuth:    provider.config(),
	}, st
}

func TestGoogleSignInEncodesDestinationInState(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(t, "user@example.com")
	svc, _ := newGoogleService(t, provider)

	authURL, state, err := svc.SignIn(ctx, "/app/dashboard")
	require.NoError(t, err)
	require.Contains(t, authURL, provider.server.URL+"/auth")
	require.Len(t, state, stateTokenLength+len("/app/dashboard"))
	require.Equal(t, "/app/dashboard", destinationFromState(state))

	// Each sign-in gets a fresh random prefix.
	_, other, err := svc.SignIn(ctx, "/app/dashboard")
	require.NoError(t, err)
	require.NotEqual(t, state, other)
}

func TestGoogleCallbackStateMismatchNeverExchanges(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(t, "user@example.com")
	svc, _ := newGoogleService(t, provider)

	_, state, err := svc.SignIn(ctx, "/")
	require.NoError(t, err)

	cases := []struct {
		name   string
		state  string
		cookie string
	}{
		{"forged state", "forged" + state[6:], state},
		{"missing cookie", state, ""},
		{"missing state", "", state},
		{"swapped sessions", state, state + "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Callback(ctx, tc.state, tc.cookie, "some-code")
			require.ErrorIs(t, err, ErrStateMismatch)
		})
	}

	require.Zero(t, provider.exchanges.Load(), "no code exchange may happen on mismatch")
}

func TestGoogleCallbackProvisionsUserAndIssuesSession(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(t, "fresh@example.com")
	svc, st := newGoogleService(t, provider)

	_, state, err := svc.SignIn(ctx, "/app/settings")
	require.NoError(t, err)

	session, destination, err := svc.Callback(ctx, state, state, "auth-code")
	require.NoError(t, err)
	require.Equal(t, "/app/settings", destination)
	require.EqualValues(t, 1, provider.exchanges.Load())

	user, err := st.Users().GetUserByEmail(ctx, "fresh@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, user.Role)
	require.Empty(t, user.PasswordHash)
	require.Equal(t, user.ID, session.UserID)

	identity, ok, err := svc.Sessions.Lookup(ctx, session.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh@example.com", identity.Email)
}

func TestGoogleCallbackReusesExistingUser(t *testing.T) {
	ctx := context.Background()
	provider := newFakeProvider(t, "known@example.com")
	svc, st := newGoogleService(t, provider)

	existing := seedUser(t, st, "known@example.com", "some-password-1", domain.RoleStandard)

	_, state, err := svc.SignIn(ctx, "/")
	require.NoError(t, err)

	session, _, err := svc.Callback(ctx, state, state, "auth-code")
	require.NoError(t, err)
	require.Equal(t, existing.ID, session.UserID)
	require.Equal(t, existing.OrganizationID, session.OrganizationID)
}

func TestDestinationFromStateFallsBackToRoot(t *testing.T) {
	prefix := "0123456789abcdefghijkl" // 22 chars standing in for the random token

	require.Equal(t, "/", destinationFromState(prefix))
	require.Equal(t, "/", destinationFromState(prefix+"https://evil.example"))
	require.Equal(t, "/", destinationFromState(prefix+"//evil.example"))
	require.Equal(t, "/app", destinationFromState(prefix+"/app"))
}
