package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/mnuddindev/foodgram/pkg/logger"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP and app settings passed in from app config.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AppURL       string
	FromEmail    string
}

// Enabled reports whether an SMTP host is configured.
func (c EmailConfig) Enabled() bool {
	return c.SMTPHost != ""
}

// SendWelcomeEmail greets a newly registered user. A missing SMTP host turns
// it into a no-op.
func SendWelcomeEmail(ctx context.Context, config EmailConfig, email, username string, log *logger.Logger) error {
	if !config.Enabled() {
		return nil
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Welcome to Foodgram</title>
    <style>
        body { font-family: 'Arial', sans-serif; background-color: #f4f4f4; color: #333; }
        .container { max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 8px; }
        .header { background-color: #e26c2d; padding: 20px; text-align: center; color: #ffffff; }
        .content { padding: 30px; line-height: 1.6; }
        .button { display: inline-block; padding: 12px 24px; background-color: #e26c2d; color: #ffffff; text-decoration: none; border-radius: 5px; }
        .footer { padding: 20px; text-align: center; font-size: 12px; color: #777; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>Welcome to Foodgram!</h1></div>
        <div class="content">
            <p>Hello %s,</p>
            <p>Your account is ready. Publish recipes, follow authors and build a shopping list from everything you plan to cook.</p>
            <p style="text-align: center;"><a href="%s/signin" class="button">Sign in</a></p>
        </div>
        <div class="footer"><p>&copy; %d Foodgram</p></div>
    </div>
</body>
</html>
`, username, config.AppURL, time.Now().Year())

	textBody := fmt.Sprintf(`
Hello %s,

Your Foodgram account is ready. Sign in at %s/signin

© %d Foodgram
`, username, config.AppURL, time.Now().Year())

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.FromEmail)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Welcome to Foodgram")
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Warn(ctx).WithMeta(Map{"email": email}).Logs(fmt.Sprintf("Failed to send welcome email: %v", err))
		return WrapError(err, ErrInternalServerError.Code, "Failed to send welcome email")
	}

	log.Info(ctx).WithMeta(Map{"email": email}).Logs("Welcome email sent")
	return nil
}
