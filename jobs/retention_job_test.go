package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/models"
	"go.uber.org/zap"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type failingMessages struct {
	database.MessageStore
}

func (failingMessages) DeleteExpired(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestRetentionJob_ReapsExpiredRecords(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	retention := database.Retention{TTL: 24 * time.Hour, Now: clk.Now}
	messages := database.NewMemoryMessageStore(retention)
	connections := database.NewMemoryConnectionStore(retention)

	if _, err := messages.Create(ctx, &models.Message{From: "a", To: "b", Content: models.Text{Body: "old"}}); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	if _, err := connections.CreateRequest(ctx, "a", "b"); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	clk.now = clk.now.Add(23 * time.Hour)
	if _, err := messages.Create(ctx, &models.Message{From: "a", To: "b", Content: models.Text{Body: "new"}}); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}

	clk.now = clk.now.Add(2 * time.Hour)
	job := NewRetentionJob(messages, connections, zap.NewNop().Sugar())
	gotMessages, gotRequests := job.Reap(ctx)
	if gotMessages != 1 {
		t.Errorf("unexpected reaped messages: want 1, got %d", gotMessages)
	}
	if gotRequests != 1 {
		t.Errorf("unexpected reaped requests: want 1, got %d", gotRequests)
	}

	left, err := messages.FindByPair(ctx, "a", "b")
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	if len(left) != 1 || models.FieldsOf(left[0].Content).Text != "new" {
		t.Errorf("want only the recent message, got %v", left)
	}

	gotMessages, gotRequests = job.Reap(ctx)
	if gotMessages != 0 || gotRequests != 0 {
		t.Errorf("second pass should be a no-op, got %d/%d", gotMessages, gotRequests)
	}
}

func TestRetentionJob_ContinuesAfterStoreError(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	retention := database.Retention{TTL: time.Hour, Now: clk.Now}
	connections := database.NewMemoryConnectionStore(retention)
	if _, err := connections.CreateRequest(ctx, "a", "b"); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	clk.now = clk.now.Add(2 * time.Hour)

	job := NewRetentionJob(failingMessages{}, connections, zap.NewNop().Sugar())
	gotMessages, gotRequests := job.Reap(ctx)
	if gotMessages != 0 {
		t.Errorf("want 0 messages on error, got %d", gotMessages)
	}
	if gotRequests != 1 {
		t.Errorf("want 1 request reaped, got %d", gotRequests)
	}
}

func TestRetentionJob_RunWithoutStores(t *testing.T) {
	NewRetentionJob(nil, nil, zap.NewNop().Sugar()).Run()
}
