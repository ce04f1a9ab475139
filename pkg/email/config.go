package email

// Config holds email service configuration.
// Postmark tokens are optional so development setups can fall back to DevSender.
// SenderEmail is the default From address when a message does not carry one.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SenderName           string `env:"SENDER_NAME"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}

// PostmarkEnabled reports whether both Postmark tokens are set.
func (c Config) PostmarkEnabled() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}

// Sender returns the default From address.
func (c Config) Sender() Address {
	return Address{Name: c.SenderName, Email: c.SenderEmail}
}
