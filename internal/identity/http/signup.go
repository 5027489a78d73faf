package http

import (
	"errors"
	"net/http"

	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

type SignupHandler struct {
	SignupService *service.SignupService
}

// ServeHTTP starts self-service signup: provisions the organization and its
// pending owner, and mails the completion link.
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !requireForm(w, r, "email") {
		return
	}

	result, err := h.SignupService.Signup(ctx, r.FormValue("email"))
	if err != nil {
		if errors.Is(err, service.ErrDispatchFailed) {
			writeError(w, http.StatusInternalServerError, "server_error",
				"Could not send the signup mail; nothing was created")
			return
		}
		log.Error("signup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Signup failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identitysdk.SignupResponse{
		OrganizationID: result.OrganizationID,
		UserID:         result.UserID.String(),
	})
}

type SignupVerifyHandler struct {
	SignupService *service.SignupService
}

// ServeHTTP reports whether a signup link is still completable. The UI calls
// this before rendering the set-password form.
func (h *SignupVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !requireForm(w, r, "email", "org", "token") {
		return
	}

	valid, err := h.SignupService.Verify(ctx, r.FormValue("email"), r.FormValue("org"), r.FormValue("token"))
	if err != nil {
		slogx.FromContext(ctx).Error("signup verification failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Verification failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.SignupVerifyResponse{Valid: valid})
}

type SignupCompleteHandler struct {
	SignupService *service.SignupService
}

// ServeHTTP completes a pending signup by setting the account password.
func (h *SignupCompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !requireForm(w, r, "email", "org", "token", "password") {
		return
	}

	err := h.SignupService.Complete(ctx,
		r.FormValue("email"), r.FormValue("org"), r.FormValue("token"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignupNotFound):
			writeError(w, http.StatusBadRequest, "invalid_grant",
				"Signup token is invalid or already used")
		case errors.Is(err, service.ErrSignupExpired):
			writeError(w, http.StatusBadRequest, "invalid_grant",
				"Signup token has expired")
		default:
			log.Error("signup completion failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "Completion failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.StatusResponse{Status: "ok"})
}
