package mail

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
)

// SMTPSender delivers mail through a plain SMTP relay. Useful for local
// development against mailpit or a corporate relay.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewSMTPSender(host, port, username, password, from string) (*SMTPSender, error) {
	if host == "" || port == "" || from == "" {
		return nil, errors.New("smtp: host, port and from address are required")
	}
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, From: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	body := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s",
		msg.To, s.From, msg.Subject, msg.Text)

	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{msg.To}, []byte(body))
}
