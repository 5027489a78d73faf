package http

import (
	"errors"
	"net/http"

	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

type PasswordForgotHandler struct {
	PasswordService *service.PasswordService
}

// ServeHTTP records a reset request and mails the reset link. An unknown email
// is reported to the caller; the product treats that as a form validation
// problem, not something to hide.
func (h *PasswordForgotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !requireForm(w, r, "email") {
		return
	}

	if err := h.PasswordService.Forgot(ctx, r.FormValue("email")); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "invalid_request", "No account with that email")
		case errors.Is(err, service.ErrDispatchFailed):
			writeError(w, http.StatusInternalServerError, "server_error",
				"Could not send the reset mail")
		default:
			log.Error("forgot password failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "Request failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.StatusResponse{Status: "ok"})
}

type PasswordResetHandler struct {
	PasswordService *service.PasswordService
}

// ServeHTTP redeems a reset token and replaces the password. Unknown, expired,
// and consumed tokens all get the same answer.
func (h *PasswordResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !requireForm(w, r, "email", "org", "token", "password") {
		return
	}

	err := h.PasswordService.Reset(ctx,
		r.FormValue("email"), r.FormValue("org"), r.FormValue("token"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrResetNotFound) {
			writeError(w, http.StatusBadRequest, "invalid_grant",
				"Reset token is invalid or expired")
			return
		}
		log.Error("password reset failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Reset failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.StatusResponse{Status: "ok"})
}
