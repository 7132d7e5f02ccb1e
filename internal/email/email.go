package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v5"
	"github.com/sethvargo/go-retry"

	"derrclan.com/study-desk/internal/config"
)

var ErrNotConfigured = errors.New("mailgun configuration missing")

// SendHarvestReport mails the outcome of a harvest run to cfg.Recipient.
func SendHarvestReport(ctx context.Context, cfg config.MailConfig, outputPath, summary string) error {
	if !cfg.Enabled() {
		return ErrNotConfigured
	}

	mg := mailgun.NewMailgun(cfg.APIKey)

	subject := "Verse harvest finished"
	body := fmt.Sprintf("The verse harvest has finished.\n\n%s\n\nOutput written to %s.\n", summary, outputPath)

	message := mailgun.NewMessage(cfg.Domain, cfg.Sender, subject, body)
	message.AddRecipient(cfg.Recipient)

	maxRetries := 5
	b := retry.WithMaxRetries(uint64(maxRetries-1), retry.NewExponential(time.Second))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if _, err := mg.Send(sendCtx, message); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to send harvest report after %d attempts: %w", maxRetries, err)
	}
	return nil
}
