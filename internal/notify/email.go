package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailNotifier mails each message to the admin through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     []string
	logger *zap.SugaredLogger
}

func NewEmailNotifier(apiKey, from string, to []string, logger *zap.SugaredLogger) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
		logger: logger,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, message string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: "New customer feedback",
		Html:    renderEmail(message),
		Text:    message,
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.logger.Infow("notification email sent", "id", sent.Id, "to", n.to)
	return nil
}

func renderEmail(message string) string {
	body := strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">FeedbackHub</h2>
			<p style="color: #444; line-height: 1.5;">%s</p>
			<p style="color: #aaa; font-size: 12px;">
				Sign in to the admin dashboard to review or edit this feedback.
			</p>
		</div>
	`, body)
}
