// Package email sends transactional emails through Postmark, or writes them to
// disk in development.
//
// Both implementations satisfy EmailSender and validate SendEmailParams before
// doing anything:
//
//	sender, err := email.NewPostmarkClient(cfg)
//	if err != nil {
//	    return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//	    From:     email.Address{Name: "Acme", Email: "noreply@acme.test"},
//	    SendTo:   "user@example.com",
//	    Subject:  "Verify your email",
//	    BodyText: text,
//	    BodyHTML: html,
//	    Tag:      "verify-email",
//	})
//
// NewDevSender(dir) stores every message as timestamped .html, .txt and .json
// files, which is handy for copying verification links during local work.
//
// The templates subpackage renders templ components to strings for BodyHTML.
//
// Errors are sentinel values (ErrInvalidConfig, ErrInvalidParams,
// ErrFailedToSendEmail) checked with errors.Is.
package email
