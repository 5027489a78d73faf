package identitysdk

// ErrorResponse is the error envelope every endpoint uses.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g. "invalid_request",
	// "invalid_grant", "state_mismatch", "server_error").
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error.
	ErrorDescription string `json:"error_description"`
}

// SignupResponse is returned from POST /v1/signup.
type SignupResponse struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
}

// SignupVerifyResponse is returned from POST /v1/signup/verify.
type SignupVerifyResponse struct {
	// Valid reports whether the signup link can still be completed.
	Valid bool `json:"valid"`
}

// InviteResponse is returned from POST /v1/organization/invites.
type InviteResponse struct {
	InviteID       string `json:"invite_id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
}

// AcceptInviteResponse is returned from POST /v1/organization/invites/accept.
type AcceptInviteResponse struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

// SessionResponse is returned from GET /v1/sso/session and describes the
// identity the current cookie authenticates.
type SessionResponse struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
}

// StatusResponse is the generic acknowledgement for endpoints with no other
// payload (logout, forgot, reset, complete).
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness (readyz only).
type HealthChecks struct {
	Database string `json:"database"`
}
