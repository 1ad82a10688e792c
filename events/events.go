package events

import (
	"context"
	"encoding/json"
	"time"
)

const (
	MessageCreated      = "message.created"
	MessageRead         = "message.read"
	ConnectionRequested = "connection.requested"
	ConnectionAccepted  = "connection.accepted"
	ConnectionRejected  = "connection.rejected"
)

// Event mirrors a committed write for downstream consumers.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func New(eventType string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: b}, nil
}

// Publisher hands events to a broker. Publish must not block the caller on
// broker availability.
type Publisher interface {
	Publish(ctx context.Context, key string, ev Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
func (NopPublisher) Close() error                                { return nil }
