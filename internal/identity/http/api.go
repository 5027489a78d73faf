package http

import (
	"net/http"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
)

func writeError(w http.ResponseWriter, status int, code, description string) {
	httpx.WriteJSON(w, status, identitysdk.ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

// requireForm parses the form and checks that every named field is present.
// It writes the error response itself and reports whether the caller should
// continue.
func requireForm(w http.ResponseWriter, r *http.Request, fields ...string) bool {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid form data")
		return false
	}
	for _, f := range fields {
		if r.FormValue(f) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", f+" is required")
			return false
		}
	}
	return true
}

// setSessionCookie binds a freshly issued session to the client. The cookie is
// host-wide so every endpoint and the fronting app can see it. secure is off
// only in dev setups without TLS.
func setSessionCookie(w http.ResponseWriter, session domain.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
