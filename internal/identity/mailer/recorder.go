package mailer

import (
	"context"
	"sync"
)

// Recorder captures messages instead of sending them. It stands in for the
// real transport in tests, including failure injection for the
// rollback-on-dispatch-failure paths.
type Recorder struct {
	mu sync.Mutex

	Welcomes []WelcomeMessage
	Invites  []InviteMessage
	Resets   []ResetMessage

	// FailWith, when set, makes every send fail with that error.
	FailWith error
}

func (m *Recorder) SendWelcome(ctx context.Context, msg WelcomeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Welcomes = append(m.Welcomes, msg)
	return nil
}

func (m *Recorder) SendInvite(ctx context.Context, msg InviteMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Invites = append(m.Invites, msg)
	return nil
}

func (m *Recorder) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Resets = append(m.Resets, msg)
	return nil
}

// LastWelcome returns the most recent welcome message, if any.
func (m *Recorder) LastWelcome() (WelcomeMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Welcomes) == 0 {
		return WelcomeMessage{}, false
	}
	return m.Welcomes[len(m.Welcomes)-1], true
}
