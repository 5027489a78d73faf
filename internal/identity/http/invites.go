package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/identitysdk"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

type InviteMintHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP creates a team invite in the caller's organization. Runs behind
// SessionMiddleware, so the creator identity comes from the request context.
func (h *InviteMintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	caller, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_session", "Authentication required")
		return
	}

	if !requireForm(w, r, "email", "role") {
		return
	}

	creatorID, err := uuid.Parse(caller.UserID)
	if err != nil {
		log.Error("session carries malformed user id", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "Invite failed")
		return
	}

	creator := domain.User{
		ID:             creatorID,
		OrganizationID: caller.OrganizationID,
		Email:          caller.Email,
		Role:           domain.Role(caller.Role),
	}

	invite, err := h.InviteService.Invite(ctx, creator, r.FormValue("email"), domain.Role(r.FormValue("role")))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "invalid_request", "Unknown role")
		case errors.Is(err, service.ErrDispatchFailed):
			writeError(w, http.StatusInternalServerError, "server_error",
				"Could not send the invite mail; nothing was created")
		default:
			log.Error("invite creation failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "Invite failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identitysdk.InviteResponse{
		InviteID:       invite.ID.String(),
		OrganizationID: invite.OrganizationID,
		Email:          invite.Email,
		Role:           string(invite.Role),
	})
}

type InviteAcceptHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP redeems an invite token and creates the invited account.
func (h *InviteAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !requireForm(w, r, "email", "org", "token", "password") {
		return
	}

	user, err := h.InviteService.Accept(ctx,
		r.FormValue("email"), r.FormValue("org"), r.FormValue("token"), r.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			writeError(w, http.StatusBadRequest, "invalid_grant",
				"Invite token is invalid or already used")
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "invalid_request",
				"Email is already registered in this organization")
		default:
			log.Error("invite acceptance failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "Acceptance failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identitysdk.AcceptInviteResponse{
		UserID:         user.ID.String(),
		OrganizationID: user.OrganizationID,
		Role:           string(user.Role),
	})
}
