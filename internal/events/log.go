package events

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// LogPublisher writes events to a logger instead of a broker. It is used
// when no NATS URL is configured.
type LogPublisher struct {
	logger zerolog.Logger
	prefix string
	clock  clockwork.Clock
}

func NewLogPublisher(logger zerolog.Logger, prefix string) *LogPublisher {
	return &LogPublisher{logger: logger, prefix: prefix, clock: clockwork.NewRealClock()}
}

func (p *LogPublisher) Publish(ctx context.Context, leagueID int64, eventType string, payload any) error {
	env, err := NewEnvelope(leagueID, eventType, payload, p.clock.Now())
	if err != nil {
		return err
	}
	p.logger.Info().
		Str("subject", Subject(p.prefix, leagueID, eventType)).
		Str("event_id", env.EventID).
		Time("occurred_at", env.OccurredAt.Truncate(time.Millisecond)).
		RawJSON("payload", env.Payload).
		Msg("Event published")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
