// Package mailer wraps github.com/resend/resend-go/v2, the teacher's
// declared transactional-email dependency, to notify the human operator when
// a review is ready, when a review window is about to expire, and when a
// submit fails (spec §4.6, §4.7).
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Mailer sends plain operator-notification emails.
type Mailer struct {
	client    *resend.Client
	from      string
	operator  string
}

func New(apiKey, from, operatorEmail string) *Mailer {
	return &Mailer{client: resend.NewClient(apiKey), from: from, operator: operatorEmail}
}

// Notify sends a single notification email to the configured operator.
func (m *Mailer) Notify(ctx context.Context, subject, body string) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{m.operator},
		Subject: subject,
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("mailer: send failed: %w", err)
	}
	return nil
}

func (m *Mailer) ReviewReady(ctx context.Context, applicationID string) error {
	return m.Notify(ctx, "Application ready for review",
		fmt.Sprintf("Application %s is waiting for human authorization.", applicationID))
}

func (m *Mailer) ReviewExpiring(ctx context.Context, applicationID string, minutesLeft int) error {
	return m.Notify(ctx, "Application review expiring soon",
		fmt.Sprintf("Application %s expires review in %d minutes.", applicationID, minutesLeft))
}

func (m *Mailer) SubmitFailed(ctx context.Context, applicationID, reason string) error {
	return m.Notify(ctx, "Application submission failed",
		fmt.Sprintf("Application %s failed to submit: %s", applicationID, reason))
}
