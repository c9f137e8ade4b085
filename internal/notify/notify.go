package notify

import "context"

// EmailSender delivers a single message. Implementations are best-effort:
// a failed send returns an error for the caller to log, never panics.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a short text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}
