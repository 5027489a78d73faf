package http

import (
	"errors"
	"net/http"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

type LoginHandler struct {
	SessionService *service.SessionService
	SecureCookies  bool
}

// ServeHTTP authenticates an email/password pair and sets the session cookie.
// Every failure mode answers the same 401.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !requireForm(w, r, "email", "password") {
		return
	}

	session, err := h.SessionService.Login(ctx, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials",
				"Email or password is incorrect")
			return
		}
		log.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Login failed")
		return
	}

	setSessionCookie(w, session, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, identitysdk.StatusResponse{Status: "ok"})
}

type LogoutHandler struct {
	SessionService *service.SessionService
	SecureCookies  bool
}

// ServeHTTP revokes the session in the cookie, if any, and clears the cookie
// either way. Deliberately not behind SessionMiddleware: logging out with a
// stale cookie must still succeed.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(domain.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.SessionService.Revoke(ctx, cookie.Value); err != nil {
			slogx.FromContext(ctx).Error("logout revoke failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "Logout failed")
			return
		}
	}

	clearSessionCookie(w, h.SecureCookies)
	httpx.WriteJSON(w, http.StatusOK, identitysdk.StatusResponse{Status: "ok"})
}

type SessionHandler struct{}

// ServeHTTP returns the identity bound to the current session. Runs behind
// SessionMiddleware, which already rejected anonymous callers.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_session", "Authentication required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.SessionResponse{
		UserID:         caller.UserID,
		OrganizationID: caller.OrganizationID,
		Email:          caller.Email,
		Role:           caller.Role,
	})
}
