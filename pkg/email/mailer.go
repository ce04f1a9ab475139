package email

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrymomot/emailauth/pkg/validator"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// String formats the address for a mail header, quoting the name when needed.
func (a Address) String() string {
	if a.Email == "" {
		return ""
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

func (a Address) IsZero() bool {
	return a.Email == ""
}

// SendEmailParams represents the parameters for sending an email.
// From is optional; senders fall back to their configured address.
type SendEmailParams struct {
	From     Address `json:"from"`
	SendTo   string  `json:"send_to"`
	Subject  string  `json:"subject"`
	BodyText string  `json:"body_text,omitempty"`
	BodyHTML string  `json:"body_html,omitempty"`
	Tag      string  `json:"tag,omitempty"`
}

// Validate checks the recipient, subject and body. At least one body is required.
func (p SendEmailParams) Validate() error {
	if strings.TrimSpace(p.SendTo) == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if validator.Apply(validator.ValidEmail("send_to", p.SendTo)) != nil {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if !p.From.IsZero() && validator.Apply(validator.ValidEmail("from", p.From.Email)) != nil {
		return fmt.Errorf("%w: From must be a valid email address", ErrInvalidParams)
	}
	if strings.TrimSpace(p.Subject) == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if strings.ContainsAny(p.Subject, "\r\n") {
		return fmt.Errorf("%w: Subject must be a single line", ErrInvalidParams)
	}
	if strings.TrimSpace(p.BodyHTML) == "" && strings.TrimSpace(p.BodyText) == "" {
		return fmt.Errorf("%w: BodyText or BodyHTML is required", ErrInvalidParams)
	}
	return nil
}
