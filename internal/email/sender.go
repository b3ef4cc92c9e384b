package email

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/config"
)

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendFrom(ctx context.Context, recipient, subject, body, sender string) error
}

// disabledSender drops mail when SES is not configured.
type disabledSender struct{}

func (disabledSender) Send(ctx context.Context, recipient, subject, body string) error {
	log.Ctx(ctx).Debug().Str("subject", subject).Msg("Email disabled; skipping send")
	return nil
}

func (d disabledSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	return d.Send(ctx, recipient, subject, body)
}

// NewSender returns an SES sender when credentials are configured and a
// no-op sender otherwise.
func NewSender(ctx context.Context, cfg config.EmailConfig) (EmailSender, error) {
	if !cfg.Enabled() {
		log.Info().Msg("SES credentials not configured; outgoing email disabled")
		return disabledSender{}, nil
	}
	client, err := NewSESClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}
