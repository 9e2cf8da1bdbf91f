package email

import (
	"fmt"
	"html"

	"yuvai/internal/config"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1f2937; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .code { font-size: 32px; letter-spacing: 8px; font-weight: 700; text-align: center; background: white; border: 1px dashed #0f766e; border-radius: 6px; padding: 15px; margin: 15px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// VerificationCode generates the registration OTP email.
func (t *Templates) VerificationCode(username, code string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Your verification code: %s", t.cfg.SiteTitle, code)

	content := fmt.Sprintf(`
        <p>Hello %s,</p>
        <p>Use this code to finish creating your account:</p>
        <div class="code">%s</div>
        <p>If you did not try to register, you can ignore this email.</p>
    `, html.EscapeString(username), html.EscapeString(code))

	htmlBody = t.baseHTML("Verify your account", content)

	textBody = fmt.Sprintf(`Hello %s,

Use this code to finish creating your account:

    %s

Enter it at %s/verify

If you did not try to register, you can ignore this email.

--
%s
`, username, code, t.cfg.BaseURL, t.cfg.SiteTitle)

	return subject, htmlBody, textBody
}
