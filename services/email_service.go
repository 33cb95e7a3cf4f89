package services

import (
	"fmt"
	"log"
	"time"

	"formharbor/models"

	"github.com/resend/resend-go/v2"
)

// Notifier sends transactional email to account holders. Implementations
// must be safe for concurrent use.
type Notifier interface {
	SendSubmissionAlert(account *models.Account, submission *models.Submission) error
	SendDigest(account *models.Account, unread int64, usage *models.MonthlyUsage) error
}

type resendNotifier struct {
	client *resend.Client
	from   string
}

// NewResendNotifier creates a Notifier backed by Resend. If apiKey is empty,
// it returns a notifier that only logs, so local development works without
// credentials.
func NewResendNotifier(apiKey, from string) Notifier {
	if apiKey == "" {
		log.Println("WARN: [Email] No Resend API key configured. Email notifications will be logged, not sent.")
		return &logNotifier{}
	}
	return &resendNotifier{client: resend.NewClient(apiKey), from: from}
}

func (n *resendNotifier) SendSubmissionAlert(account *models.Account, submission *models.Submission) error {
	html := fmt.Sprintf(
		"<h2>New contact form submission</h2>"+
			"<p><strong>From:</strong> %s &lt;%s&gt;</p>"+
			"<p><strong>Received:</strong> %s</p>"+
			"<blockquote>%s</blockquote>"+
			"<p>Sign in to your dashboard to reply or add notes.</p>",
		submission.Name, submission.Email,
		submission.SubmittedAt.Format("2 Jan 2006 15:04 MST"),
		submission.Message,
	)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{account.Email},
		Subject: fmt.Sprintf("New submission from %s", submission.Name),
		Html:    html,
	}

	sent, err := n.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send submission alert to %s: %w", account.Email, err)
	}
	log.Printf("INFO: [Email] Submission alert sent to %s (Resend ID: %s).", account.Email, sent.Id)
	return nil
}

func (n *resendNotifier) SendDigest(account *models.Account, unread int64, usage *models.MonthlyUsage) error {
	count := 0
	if usage != nil {
		count = usage.SubmissionCount
	}
	html := fmt.Sprintf(
		"<h2>Your weekly FormHarbor digest</h2>"+
			"<p>You have <strong>%d unread</strong> submission(s).</p>"+
			"<p>This month you have used %d of %d submissions on the %s plan.</p>",
		unread, count, account.MonthlySubmissionLimit, account.SubscriptionTier,
	)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{account.Email},
		Subject: "Your weekly form activity digest",
		Html:    html,
	}

	sent, err := n.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send digest to %s: %w", account.Email, err)
	}
	log.Printf("INFO: [Email] Digest sent to %s (Resend ID: %s).", account.Email, sent.Id)
	return nil
}

// logNotifier is the no-credentials fallback: it records what would have been
// sent and succeeds.
type logNotifier struct{}

func (n *logNotifier) SendSubmissionAlert(account *models.Account, submission *models.Submission) error {
	log.Printf("INFO: [Email] (mock) Submission alert for %s: new message from %s <%s> at %s.",
		account.Email, submission.Name, submission.Email, submission.SubmittedAt.Format(time.RFC3339))
	return nil
}

func (n *logNotifier) SendDigest(account *models.Account, unread int64, usage *models.MonthlyUsage) error {
	count := 0
	if usage != nil {
		count = usage.SubmissionCount
	}
	log.Printf("INFO: [Email] (mock) Digest for %s: %d unread, %d/%d used this month.",
		account.Email, unread, count, account.MonthlySubmissionLimit)
	return nil
}
