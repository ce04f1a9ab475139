package auth

import (
	"context"

	"github.com/dmitrymomot/emailauth/pkg/email/templates"
)

// EmailContent is the resolved body of an outgoing auth email.
type EmailContent struct {
	Subject string
	Text    string
	HTML    string
}

type VerificationEmailParams struct {
	VerificationLink string
}

type PasswordResetEmailParams struct {
	PasswordResetLink string
}

// VerificationEmailContentFunc builds the email sent after signup.
type VerificationEmailContentFunc func(ctx context.Context, params VerificationEmailParams) (EmailContent, error)

// PasswordResetEmailContentFunc builds the email sent for a reset request.
type PasswordResetEmailContentFunc func(ctx context.Context, params PasswordResetEmailParams) (EmailContent, error)

func DefaultVerificationEmailContent(ctx context.Context, p VerificationEmailParams) (EmailContent, error) {
	html, err := templates.Render(ctx, templates.ActionEmail(
		"Verify your email",
		"Click the link below to verify your email",
		"Verify email",
		p.VerificationLink,
	))
	if err != nil {
		return EmailContent{}, err
	}
	return EmailContent{
		Subject: "Verify your email",
		Text:    "Click the link below to verify your email: " + p.VerificationLink,
		HTML:    html,
	}, nil
}

func DefaultPasswordResetEmailContent(ctx context.Context, p PasswordResetEmailParams) (EmailContent, error) {
	html, err := templates.Render(ctx, templates.ActionEmail(
		"Reset your password",
		"Click the link below to reset your password",
		"Reset password",
		p.PasswordResetLink,
	))
	if err != nil {
		return EmailContent{}, err
	}
	return EmailContent{
		Subject: "Reset your password",
		Text:    "Click the link below to reset your password: " + p.PasswordResetLink,
		HTML:    html,
	}, nil
}
