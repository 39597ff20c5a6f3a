package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feedbackhub-backend/internal/models"
)

// Notifier defines the interface for publishing messages to a notification channel.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FormatFeedbackMessage renders a new-feedback announcement.
func FormatFeedbackMessage(f *models.Feedback) string {
	return fmt.Sprintf("📝 *New Feedback Received*\nProduct: `%s`\nCustomer: %s\nRating: %s (%d/5)\nFeedback: %s",
		f.ProductID, f.CustomerName, strings.Repeat("⭐", f.Rating), f.Rating, f.ReviewText)
}
