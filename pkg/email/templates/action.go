package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ActionEmail is a minimal single-action email: a heading, one paragraph and a
// button pointing at link. All values are escaped; unsafe link schemes are
// replaced by templ's sanitized placeholder.
func ActionEmail(heading, text, buttonLabel, link string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		href := string(templ.URL(link))
		_, err := fmt.Fprintf(w, actionLayout,
			templ.EscapeString(heading),
			templ.EscapeString(heading),
			templ.EscapeString(text),
			templ.EscapeString(href),
			templ.EscapeString(buttonLabel),
			templ.EscapeString(href),
			templ.EscapeString(href),
		)
		return err
	})
}

const actionLayout = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title></head>
<body style="margin:0;padding:24px;background:#f6f7f9;font-family:Arial,Helvetica,sans-serif;color:#1f2933;">
<table role="presentation" width="100%%" cellpadding="0" cellspacing="0"><tr><td align="center">
<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;padding:32px;">
<tr><td><h1 style="margin:0 0 16px;font-size:22px;">%s</h1>
<p style="margin:0 0 24px;font-size:15px;line-height:22px;">%s</p>
<p style="margin:0 0 24px;"><a href="%s" style="display:inline-block;padding:12px 20px;background:#2563eb;color:#ffffff;text-decoration:none;border-radius:6px;">%s</a></p>
<p style="margin:0;font-size:12px;color:#6b7280;">If the button does not work, copy this link into your browser:<br><a href="%s" style="color:#2563eb;word-break:break-all;">%s</a></p>
</td></tr></table>
</td></tr></table>
</body>
</html>`
