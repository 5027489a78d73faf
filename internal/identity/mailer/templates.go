package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
)

const (
	subjectWelcome = "Welcome to Lightbeam"
	subjectInvite  = "You've been invited to Lightbeam"
	subjectReset   = "Reset your Lightbeam password"
)

var (
	welcomeTemplate = template.Must(template.New("welcome").Parse(`<p>Hi {{.Email}},</p>
<p>Thanks for signing up. Finish creating your account by setting a password:</p>
<p><a href="{{.Link}}">Complete signup</a></p>
<p>This link is valid for 24 hours.</p>`))

	inviteTemplate = template.Must(template.New("invite").Parse(`<p>Hi {{.Email}},</p>
<p>{{.Creator}} invited you to join their team on Lightbeam as a {{.Role}} member.</p>
<p><a href="{{.Link}}">Accept invitation</a></p>`))

	resetTemplate = template.Must(template.New("reset").Parse(`<p>Hi {{.Email}},</p>
<p>We received a request to reset your password. If this was you, follow the
link below; otherwise you can ignore this message.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>This link is valid for 1 hour.</p>`))
)

// linkTo builds a front-end deep link carrying the email/org/token triple.
func linkTo(baseURL, path, email, orgID, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("org", orgID)
	q.Set("token", token)
	return fmt.Sprintf("%s%s?%s", baseURL, path, q.Encode())
}

func renderWelcome(baseURL string, msg WelcomeMessage) (string, error) {
	return render(welcomeTemplate, struct {
		Email string
		Link  string
	}{
		Email: msg.Email,
		Link:  linkTo(baseURL, "/signup/complete", msg.Email, msg.OrganizationID, msg.Token),
	})
}

func renderInvite(baseURL string, msg InviteMessage) (string, error) {
	return render(inviteTemplate, struct {
		Email   string
		Creator string
		Role    string
		Link    string
	}{
		Email:   msg.Email,
		Creator: msg.Creator,
		Role:    msg.Role,
		Link:    linkTo(baseURL, "/invites/accept", msg.Email, msg.OrganizationID, msg.Token),
	})
}

func renderReset(baseURL string, msg ResetMessage) (string, error) {
	return render(resetTemplate, struct {
		Email string
		Link  string
	}{
		Email: msg.Email,
		Link:  linkTo(baseURL, "/password/reset", msg.Email, msg.OrganizationID, msg.Token),
	})
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
