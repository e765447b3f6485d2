package adapter

import "context"

// Notification is sent once when a job completes.
type Notification struct {
	UserID         string
	To             string
	TelegramChatID *int64
	Prompt         string
	ResultLink     string
}

// Notifier delivers completion notices. Delivery is best-effort: callers log
// failures and never roll back the job state because of them.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
