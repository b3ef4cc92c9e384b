package testutil

import (
	"context"
	"sync"
)

// PublishedEvent is one call recorded by RecordingPublisher.
type PublishedEvent struct {
	LeagueID  int64
	EventType string
	Payload   any
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, leagueID int64, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{LeagueID: leagueID, EventType: eventType, Payload: payload})
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}
