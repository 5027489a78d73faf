package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

// stateCookieName carries the CSRF copy of the oauth state between the
// redirect to the provider and the callback. Scoped to the callback path so it
// never travels with ordinary requests.
const stateCookieName = "GoogleOauthState"

const stateCookiePath = "/v1/sso/google/oauth2callback"

type GoogleSignInHandler struct {
	GoogleService *service.GoogleService
	SecureCookies bool
}

// ServeHTTP starts the Google authorization-code flow: mints the state, sets
// its cookie copy, and redirects to the provider.
func (h *GoogleSignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	destination := r.URL.Query().Get("dest")
	if destination == "" {
		destination = "/"
	}

	authURL, state, err := h.GoogleService.SignIn(ctx, destination)
	if err != nil {
		slogx.FromContext(ctx).Error("google sign-in failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Sign-in failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     stateCookiePath,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

type GoogleCallbackHandler struct {
	GoogleService *service.GoogleService
	SecureCookies bool
}

// ServeHTTP finishes the flow: state echo must match the cookie copy, then
// the code is exchanged, a session issued, and the browser sent back to the
// destination carried in the state.
func (h *GoogleCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var cookieState string
	if cookie, err := r.Cookie(stateCookieName); err == nil {
		cookieState = cookie.Value
	}

	// The state cookie is single use regardless of outcome.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     stateCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	query := r.URL.Query()
	session, destination, err := h.GoogleService.Callback(ctx, query.Get("state"), cookieState, query.Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStateMismatch):
			writeError(w, http.StatusBadRequest, "state_mismatch",
				"Authorization state does not match; restart sign-in")
		case errors.Is(err, service.ErrExchangeFailed):
			log.Error("google code exchange failed", "err", err)
			writeError(w, http.StatusBadGateway, "exchange_failed",
				"Could not complete sign-in with the provider")
		default:
			log.Error("google callback failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "Sign-in failed")
		}
		return
	}

	setSessionCookie(w, session, h.SecureCookies)
	http.Redirect(w, r, destination, http.StatusFound)
}
