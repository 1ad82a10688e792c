package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNew(t *testing.T) {
	ev, err := New(MessageRead, map[string]any{"by": "u2", "modified": 3})
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	if ev.Type != MessageRead {
		t.Errorf("unexpected type: want %s, got %s", MessageRead, ev.Type)
	}
	if ev.OccurredAt.IsZero() || ev.OccurredAt.Location().String() != "UTC" {
		t.Errorf("unexpected occurredAt: %v", ev.OccurredAt)
	}

	var payload struct {
		By       string `json:"by"`
		Modified int    `json:"modified"`
	}
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload.By != "u2" || payload.Modified != 3 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestNewRejectsUnencodable(t *testing.T) {
	if _, err := New(MessageCreated, make(chan int)); err == nil {
		t.Error("want error for unencodable payload")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), "k", Event{Type: MessageCreated}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
