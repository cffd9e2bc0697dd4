package mail

import "context"

// Message is a rendered, ready-to-send email.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sender delivers a single message through some provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
