// Package events publishes league domain events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeStandingsUpdated    = "standings.updated"
	TypeRegistrationCreated = "registrations.created"
)

// Envelope is the JSON wrapper every event is published in.
type Envelope struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	LeagueID   int64           `json:"leagueId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher delivers events for a league.
type Publisher interface {
	Publish(ctx context.Context, leagueID int64, eventType string, payload any) error
	Close() error
}

// NewEnvelope wraps payload with a fresh event ID.
func NewEnvelope(leagueID int64, eventType string, payload any, now time.Time) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		LeagueID:   leagueID,
		OccurredAt: now.UTC(),
		Payload:    data,
	}, nil
}

// Subject returns "<prefix>.leagues.<id>.<type>", or without the prefix when it is empty.
func Subject(prefix string, leagueID int64, eventType string) string {
	subject := fmt.Sprintf("leagues.%d.%s", leagueID, eventType)
	if prefix == "" {
		return subject
	}
	return prefix + "." + subject
}

type StandingsUpdated struct {
	Teams int `json:"teams"`
}

type RegistrationCreated struct {
	RegistrationID int64  `json:"registrationId"`
	UserID         int64  `json:"userId"`
	Status         string `json:"status"`
	AmountDue      int64  `json:"amountDue"`
}
