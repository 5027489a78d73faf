package httpx

import (
	"context"
	"net/http"

	"github.com/lightbeamhq/identity/pkg/slogx"
)

// SessionResolver maps an opaque session id to an authenticated identity.
// ok=false means the session is unknown, expired, or revoked; that is a
// normal outcome, not an error.
type SessionResolver func(ctx context.Context, sessionID string) (Identity, bool, error)

// SessionMiddleware authenticates requests via the session cookie. Unknown or
// revoked sessions get a 401 and an expired cookie so the client drops the
// stale value.
func SessionMiddleware(cookieName string, resolve SessionResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				writeSessionError(w, cookieName, "missing session cookie")
				return
			}

			identity, ok, err := resolve(ctx, cookie.Value)
			if err != nil {
				log.Error("session lookup failed", "err", err)
				WriteJSON(w, http.StatusInternalServerError, map[string]string{
					"error":             "server_error",
					"error_description": "Failed to resolve session",
				})
				return
			}
			if !ok {
				writeSessionError(w, cookieName, "session is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithIdentity(ctx, identity)))
		})
	}
}

func writeSessionError(w http.ResponseWriter, cookieName, desc string) {
	// Instruct the client to clear the stale cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_session",
		"error_description": desc,
	})
}
