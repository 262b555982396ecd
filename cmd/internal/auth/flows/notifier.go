package flows

import (
	"context"
	"time"
)

// LinkMessage is the canonical payload for single-use link delivery.
// Token carries the plain value; it exists only in this message and in
// the recipient's hands.
type LinkMessage struct {
	Subject   string
	Token     string
	ExpiresAt time.Time
}

// Notifier delivers login links and reset links to subjects.
//
// NOTE:
// Ships with no-op defaults only. Real delivery providers are wired later.
type Notifier interface {
	SendLoginLink(ctx context.Context, msg LinkMessage) error
	SendResetLink(ctx context.Context, msg LinkMessage) error
}

// NoopNotifier is the default notifier.
type NoopNotifier struct{}

// SendLoginLink is a no-op implementation.
func (NoopNotifier) SendLoginLink(_ context.Context, _ LinkMessage) error { return nil }

// SendResetLink is a no-op implementation.
func (NoopNotifier) SendResetLink(_ context.Context, _ LinkMessage) error { return nil }
