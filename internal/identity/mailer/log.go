package mailer

import (
	"context"
	"log/slog"
)

// Log writes messages to the logger instead of delivering them. Used in dev
// so the signup/reset links are readable straight from the service output.
type Log struct {
	Logger *slog.Logger
}

func (m *Log) SendWelcome(ctx context.Context, msg WelcomeMessage) error {
	m.Logger.Info("mail: welcome",
		slog.String("to", msg.Email),
		slog.String("org_id", msg.OrganizationID),
		slog.String("token", msg.Token),
	)
	return nil
}

func (m *Log) SendInvite(ctx context.Context, msg InviteMessage) error {
	m.Logger.Info("mail: invite",
		slog.String("to", msg.Email),
		slog.String("org_id", msg.OrganizationID),
		slog.String("creator", msg.Creator),
		slog.String("role", msg.Role),
		slog.String("token", msg.Token),
	)
	return nil
}

func (m *Log) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	m.Logger.Info("mail: password reset",
		slog.String("to", msg.Email),
		slog.String("org_id", msg.OrganizationID),
		slog.String("token", msg.Token),
	)
	return nil
}
