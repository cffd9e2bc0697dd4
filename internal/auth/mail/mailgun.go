package mail

import (
	"context"
	"errors"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender delivers mail through the Mailgun API.
type MailgunSender struct {
	Domain string
	APIKey string
	From   string
}

func NewMailgunSender(domain, apiKey, from string) (*MailgunSender, error) {
	if domain == "" || apiKey == "" || from == "" {
		return nil, errors.New("mailgun: domain, api key and from address are required")
	}
	return &MailgunSender{Domain: domain, APIKey: apiKey, From: from}, nil
}

func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	mg := mailgun.NewMailgun(s.Domain, s.APIKey)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	m := mg.NewMessage(s.From, msg.Subject, msg.Text, msg.To)
	_, _, err := mg.Send(ctx, m)
	return err
}
