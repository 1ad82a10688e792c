package database

import (
	"context"
	"time"

	"github.com/anjiri1684/studlyf_network/models"
)

// MessageStore persists direct messages. Every read hides messages older than
// the retention window, whether or not the reaper has removed them yet.
type MessageStore interface {
	// Create validates the content, assigns id and creation time and persists.
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	// FindByPair returns messages between a and b in either direction,
	// oldest first.
	FindByPair(ctx context.Context, a, b string) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (*models.Message, error)
	// MarkReadBulk marks every unread message from peer to reader as read and
	// returns how many changed.
	MarkReadBulk(ctx context.Context, peer, reader string) (int64, error)
	// CountUnreadGroupedBySender maps sender to unread count. Senders with
	// nothing unread are absent.
	CountUnreadGroupedBySender(ctx context.Context, reader string) (map[string]int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

const DefaultRetention = 24 * time.Hour

// Retention is the expiry window shared by messages and connection requests.
type Retention struct {
	TTL time.Duration
	Now func() time.Time
}

func (r Retention) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r Retention) ttl() time.Duration {
	if r.TTL <= 0 {
		return DefaultRetention
	}
	return r.TTL
}

// Stamp is the creation time assigned to new records. Millisecond precision
// keeps it identical across every backend.
func (r Retention) Stamp() time.Time {
	return r.now().Truncate(time.Millisecond)
}

// Cutoff is the oldest creation time still visible. A record created exactly
// at Cutoff has expired.
func (r Retention) Cutoff() time.Time {
	return r.now().Add(-r.ttl())
}

func (r Retention) Alive(createdAt time.Time) bool {
	return createdAt.After(r.Cutoff())
}

func prepareMessage(m *models.Message, r Retention, id string) (*models.Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := &models.Message{
		ID:        id,
		From:      m.From,
		To:        m.To,
		Content:   m.Content,
		ForwardOf: copyString(m.ForwardOf),
		Read:      false,
		CreatedAt: r.Stamp(),
	}
	return out, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyMessage(m models.Message) models.Message {
	m.ForwardOf = copyString(m.ForwardOf)
	return m
}
