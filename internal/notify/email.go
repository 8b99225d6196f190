package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"servicemon/internal/config"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// Email delivers alerts over SMTP with implicit TLS. The account name
// doubles as the auth username; the password comes from the environment,
// never from the config document.
type Email struct {
	Contacts config.Contacts
	Meta     config.EmailMetadata
	Host     string
	Port     int
	Password string
}

func NewEmail(contacts config.Contacts, meta config.EmailMetadata, host string, port int, password string) (*Email, error) {
	if password == "" {
		return nil, errors.New("mail credential is empty")
	}
	if host == "" {
		host = DefaultSMTPHost
	}
	if port <= 0 {
		port = DefaultSMTPPort
	}
	return &Email{
		Contacts: contacts,
		Meta:     meta,
		Host:     host,
		Port:     port,
		Password: password,
	}, nil
}

// From is the sender address: the account joined with its service suffix.
func (e *Email) From() string {
	return e.Contacts.Source.Account + e.Contacts.Source.Service
}

func (e *Email) recipientsFor(a Audience) []string {
	if a == AudienceOperators {
		return e.Contacts.ScriptRecipient
	}
	return e.Contacts.Recipients
}

func (e *Email) Send(ctx context.Context, msg string, audience Audience) error {
	m := mail.NewMsg()
	if err := m.From(e.From()); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := m.To(e.recipientsFor(audience)...); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	m.Subject(e.Meta.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg)

	c, err := mail.NewClient(e.Host,
		mail.WithPort(e.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.Contacts.Source.Account),
		mail.WithPassword(e.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return c.DialAndSendWithContext(ctx, m)
}
