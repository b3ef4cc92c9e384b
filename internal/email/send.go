package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 10 * time.Second

// SendAsync delivers msg in the background so request handlers do not wait on
// SES. Failures are logged.
func SendAsync(ctx context.Context, sender EmailSender, recipient string, msg Message, logger *zerolog.Logger) {
	recipient = strings.TrimSpace(recipient)
	if sender == nil || recipient == "" || msg.Subject == "" {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	// The request context ends with the response; keep its values only.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	go func() {
		defer cancel()
		if err := sender.Send(sendCtx, recipient, msg.Subject, msg.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("subject", msg.Subject).Msg("Failed to send email")
		}
	}()
}
