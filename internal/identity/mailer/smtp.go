package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTP delivers rendered messages over a plain SMTP relay. There is no mail
// library in use anywhere in this codebase's dependency set; the relay
// (postfix, mailhog in dev) owns queuing and retries.
type SMTP struct {
	// Addr is host:port of the relay.
	Addr string
	// From is the sender shown to recipients, e.g. "Lightbeam Support <support@lightbeam.io>".
	From string
	// Auth is optional; nil means the relay accepts unauthenticated submission.
	Auth smtp.Auth
	// BaseURL is the front-end origin deep links point at.
	BaseURL string
}

func (m *SMTP) SendWelcome(ctx context.Context, msg WelcomeMessage) error {
	body, err := renderWelcome(m.BaseURL, msg)
	if err != nil {
		return err
	}
	return m.send(ctx, msg.Email, subjectWelcome, body)
}

func (m *SMTP) SendInvite(ctx context.Context, msg InviteMessage) error {
	body, err := renderInvite(m.BaseURL, msg)
	if err != nil {
		return err
	}
	return m.send(ctx, msg.Email, subjectInvite, body)
}

func (m *SMTP) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	body, err := renderReset(m.BaseURL, msg)
	if err != nil {
		return err
	}
	return m.send(ctx, msg.Email, subjectReset, body)
}

func (m *SMTP) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	if err := smtp.SendMail(m.Addr, m.Auth, envelopeAddress(m.From), []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// envelopeAddress strips a display name ("Name <addr>") down to the bare
// address SMTP wants in MAIL FROM.
func envelopeAddress(from string) string {
	if start := strings.LastIndex(from, "<"); start != -1 {
		if end := strings.LastIndex(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return from
}
