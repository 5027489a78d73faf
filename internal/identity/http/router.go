package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lightbeamhq/identity/internal/identity/domain"
	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/pkg/httpx"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// CookieSecure marks session and state cookies Secure. On by default;
	// switch off only for TLS-free dev setups.
	CookieSecure bool

	store           store.Store
	SignupService   *service.SignupService
	InviteService   *service.InviteService
	PasswordService *service.PasswordService
	SessionService  *service.SessionService
	GoogleService   *service.GoogleService // Optional: nil disables the Google endpoints
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		CookieSecure: true,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSignup()
	r.registerInvites()
	r.registerPassword()
	r.registerSessions()
	r.registerGoogle()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// sessionResolver adapts SessionService.Lookup to the middleware contract.
func (r *Router) sessionResolver() httpx.SessionResolver {
	return func(ctx context.Context, sessionID string) (httpx.Identity, bool, error) {
		identity, ok, err := r.SessionService.Lookup(ctx, sessionID)
		if err != nil || !ok {
			return httpx.Identity{}, false, err
		}
		return httpx.Identity{
			UserID:         identity.UserID.String(),
			OrganizationID: identity.OrganizationID,
			Email:          identity.Email,
			Role:           string(identity.Role),
		}, true, nil
	}
}

func (r *Router) registerSignup() {
	// POST /v1/signup - moderate rate limit (creates org + user + mail)
	r.Mux.Handle("POST /v1/signup",
		httpx.Chain(&SignupHandler{SignupService: r.SignupService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /v1/signup/verify - lenient; read-only token probe for the UI
	r.Mux.Handle("POST /v1/signup/verify",
		httpx.Chain(&SignupVerifyHandler{SignupService: r.SignupService},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /v1/signup/complete - strict; consumes a credential-bearing token
	r.Mux.Handle("POST /v1/signup/complete",
		httpx.Chain(&SignupCompleteHandler{SignupService: r.SignupService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvites() {
	// POST /v1/organization/invites - session-authenticated, moderate by user
	secured := httpx.Chain(&InviteMintHandler{InviteService: r.InviteService},
		httpx.SessionMiddleware(domain.SessionCookieName, r.sessionResolver()),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.Mux.Handle("POST /v1/organization/invites", secured)

	// POST /v1/organization/invites/accept - anonymous token redemption, strict
	r.Mux.Handle("POST /v1/organization/invites/accept",
		httpx.Chain(&InviteAcceptHandler{InviteService: r.InviteService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPassword() {
	// POST /v1/password/forgot - moderate; each call sends mail
	r.Mux.Handle("POST /v1/password/forgot",
		httpx.Chain(&PasswordForgotHandler{PasswordService: r.PasswordService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /v1/password/reset - strict; consumes a credential-bearing token
	r.Mux.Handle("POST /v1/password/reset",
		httpx.Chain(&PasswordResetHandler{PasswordService: r.PasswordService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSessions() {
	// POST /v1/sso/login - strict, keyed by IP + email to slow brute force
	r.Mux.Handle("POST /v1/sso/login",
		httpx.Chain(&LoginHandler{SessionService: r.SessionService, SecureCookies: r.CookieSecure},
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	// POST /v1/sso/logout - lenient; works with or without a live session
	r.Mux.Handle("POST /v1/sso/logout",
		httpx.Chain(&LogoutHandler{SessionService: r.SessionService, SecureCookies: r.CookieSecure},
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /v1/sso/session - lenient; the front end polls this
	r.Mux.Handle("GET /v1/sso/session",
		httpx.Chain(&SessionHandler{},
			httpx.SessionMiddleware(domain.SessionCookieName, r.sessionResolver()),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerGoogle() {
	if r.GoogleService == nil {
		return
	}

	r.Mux.Handle("GET /v1/sso/google/signin",
		httpx.Chain(&GoogleSignInHandler{GoogleService: r.GoogleService, SecureCookies: r.CookieSecure},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/sso/google/oauth2callback",
		httpx.Chain(&GoogleCallbackHandler{GoogleService: r.GoogleService, SecureCookies: r.CookieSecure},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
