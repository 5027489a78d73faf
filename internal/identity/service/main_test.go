package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/internal/identity/store/drivers/sqlite"
	"github.com/lightbeamhq/identity/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "identity-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// seedUser creates an organization with a single user. An empty password
// leaves the user passwordless, like a federated account.
func seedUser(t *testing.T, st store.Store, email, password string, role domain.Role) domain.User {
	t.Helper()

	orgID, err := domain.NewOrganizationID()
	require.NoError(t, err)

	var hash string
	if password != "" {
		hash, err = cryptox.HashPassword(password)
		require.NoError(t, err)
	}

	now := time.Now()
	user := domain.User{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ctx := context.Background()
	require.NoError(t, st.Organizations().CreateOrganization(ctx, domain.Organization{ID: orgID, CreatedAt: now}))
	require.NoError(t, st.Users().CreateUser(ctx, user))
	return user
}
