package database

import (
	"context"
	"sort"
	"sync"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/utils"
)

// MemoryMessageStore keeps messages in process. Used for development and tests.
type MemoryMessageStore struct {
	mu        sync.RWMutex
	retention Retention
	messages  []models.Message
}

func NewMemoryMessageStore(retention Retention) *MemoryMessageStore {
	return &MemoryMessageStore{retention: retention}
}

func (s *MemoryMessageStore) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	out, err := prepareMessage(m, s.retention, utils.NewID())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.messages = append(s.messages, copyMessage(*out))
	s.mu.Unlock()
	return out, nil
}

func (s *MemoryMessageStore) FindByPair(_ context.Context, a, b string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Message{}
	for _, m := range s.messages {
		if !s.retention.Alive(m.CreatedAt) {
			continue
		}
		if (m.From == a && m.To == b) || (m.From == b && m.To == a) {
			out = append(out, copyMessage(m))
		}
	}
	// Insertion order breaks ties, which matches id order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryMessageStore) FindByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ID == id && s.retention.Alive(m.CreatedAt) {
			out := copyMessage(m)
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("message %s not found", id)
}

func (s *MemoryMessageStore) MarkReadBulk(_ context.Context, peer, reader string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.From == peer && m.To == reader && !m.Read && s.retention.Alive(m.CreatedAt) {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (s *MemoryMessageStore) CountUnreadGroupedBySender(_ context.Context, reader string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int64{}
	for _, m := range s.messages {
		if m.To == reader && !m.Read && s.retention.Alive(m.CreatedAt) {
			counts[m.From]++
		}
	}
	return counts, nil
}

func (s *MemoryMessageStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.messages[:0]
	var removed int64
	for _, m := range s.messages {
		if s.retention.Alive(m.CreatedAt) {
			kept = append(kept, m)
			continue
		}
		removed++
	}
	// Clear the tail so dropped messages can be collected.
	for i := len(kept); i < len(s.messages); i++ {
		s.messages[i] = models.Message{}
	}
	s.messages = kept
	return removed, nil
}
