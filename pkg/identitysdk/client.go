package identitysdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to the identity service. The zero value is not usable; create
// one with New. The cookie jar carries the session cookie between calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a Client for the service at baseURL (no trailing slash).
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			// Redirects from the SSO endpoints carry cookies the caller
			// needs; never follow them automatically.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Signup starts self-service signup for email.
func (c *Client) Signup(ctx context.Context, email string) (SignupResponse, error) {
	var out SignupResponse
	err := c.postForm(ctx, "/v1/signup", url.Values{"email": {email}}, &out)
	return out, err
}

// VerifySignup checks whether a signup link is still completable.
func (c *Client) VerifySignup(ctx context.Context, email, orgID, token string) (bool, error) {
	var out SignupVerifyResponse
	err := c.postForm(ctx, "/v1/signup/verify", url.Values{
		"email": {email},
		"org":   {orgID},
		"token": {token},
	}, &out)
	return out.Valid, err
}

// CompleteSignup sets the password for a pending signup.
func (c *Client) CompleteSignup(ctx context.Context, email, orgID, token, password string) error {
	return c.postForm(ctx, "/v1/signup/complete", url.Values{
		"email":    {email},
		"org":      {orgID},
		"token":    {token},
		"password": {password},
	}, nil)
}

// Invite invites email into the caller's organization. Requires a session.
func (c *Client) Invite(ctx context.Context, email, role string) (InviteResponse, error) {
	var out InviteResponse
	err := c.postForm(ctx, "/v1/organization/invites", url.Values{
		"email": {email},
		"role":  {role},
	}, &out)
	return out, err
}

// AcceptInvite redeems an invite token and creates the invited account.
func (c *Client) AcceptInvite(ctx context.Context, email, orgID, token, password string) (AcceptInviteResponse, error) {
	var out AcceptInviteResponse
	err := c.postForm(ctx, "/v1/organization/invites/accept", url.Values{
		"email":    {email},
		"org":      {orgID},
		"token":    {token},
		"password": {password},
	}, &out)
	return out, err
}

// ForgotPassword requests a password reset mail.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.postForm(ctx, "/v1/password/forgot", url.Values{"email": {email}}, nil)
}

// ResetPassword redeems a reset token.
func (c *Client) ResetPassword(ctx context.Context, email, orgID, token, password string) error {
	return c.postForm(ctx, "/v1/password/reset", url.Values{
		"email":    {email},
		"org":      {orgID},
		"token":    {token},
		"password": {password},
	}, nil)
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.postForm(ctx, "/v1/sso/login", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
}

// Logout revokes the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.postForm(ctx, "/v1/sso/logout", url.Values{}, nil)
}

// Session returns the identity the current cookie authenticates.
func (c *Client) Session(ctx context.Context) (SessionResponse, error) {
	var out SessionResponse
	err := c.get(ctx, "/v1/sso/session", &out)
	return out, err
}

// Health checks the liveness endpoint.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.get(ctx, "/livez", &out)
	return out, err
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = "unexpected_response"
		}
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        envelope.Error,
			Description: envelope.ErrorDescription,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
