package ports

import "context"

// Notification is an outbound message to a user.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// EmailSender delivers a single notification.
type EmailSender interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier queues notifications for asynchronous delivery.
type Notifier interface {
	Enqueue(n Notification) bool
}
