package testutil

import (
	"context"
	"testing"
	"time"
)

// SentEmail is one message captured by RecordingSender.
type SentEmail struct {
	Recipient string
	Subject   string
	Body      string
	Sender    string
}

// RecordingSender captures outgoing email. Sends may happen on other
// goroutines, so tests read them with Next.
type RecordingSender struct {
	sent chan SentEmail
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{sent: make(chan SentEmail, 32)}
}

func (s *RecordingSender) Send(ctx context.Context, recipient, subject, body string) error {
	return s.SendFrom(ctx, recipient, subject, body, "")
}

func (s *RecordingSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	s.sent <- SentEmail{Recipient: recipient, Subject: subject, Body: body, Sender: sender}
	return nil
}

// Next waits for the next captured email.
func (s *RecordingSender) Next(t *testing.T) SentEmail {
	t.Helper()
	select {
	case msg := <-s.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for email")
		return SentEmail{}
	}
}

// Pending reports how many captured emails have not been read.
func (s *RecordingSender) Pending() int {
	return len(s.sent)
}
