package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "identity.db", cfg.DatabaseFile)
	require.Equal(t, "log", cfg.MailMode)
	require.Equal(t, 720*time.Hour, cfg.SessionTTL)
	require.True(t, cfg.CookieSecure)
	require.False(t, cfg.GoogleEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "https://id.example.com/v1/sso/google/oauth2callback")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.CookieSecure)
	require.True(t, cfg.GoogleEnabled())
}
