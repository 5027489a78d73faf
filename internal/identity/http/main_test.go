package http

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightbeamhq/identity/internal/identity/mailer"
	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/internal/identity/store/drivers/sqlite"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "identity-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testEnv struct {
	router *Router
	server *httptest.Server
	store  *sqlite.Store
	mails  *mailer.Recorder
	sdk    *identitysdk.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mails := &mailer.Recorder{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	router := NewRouter("test", st, logger)
	router.CookieSecure = false // httptest servers speak plain http
	router.SignupService = &service.SignupService{Store: st, Mailer: mails}
	router.InviteService = &service.InviteService{Store: st, Mailer: mails}
	router.PasswordService = &service.PasswordService{Store: st, Mailer: mails}
	router.SessionService = &service.SessionService{Store: st}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	sdk, err := identitysdk.New(server.URL)
	require.NoError(t, err)

	return &testEnv{
		router: router,
		server: server,
		store:  st,
		mails:  mails,
		sdk:    sdk,
	}
}
