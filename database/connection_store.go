package database

import (
	"context"
	"errors"
	"sync"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/utils"
	"gorm.io/gorm"
)

// ConnectionStore holds the friend graph. Pending requests expire with the
// same retention window as messages.
type ConnectionStore interface {
	// CreateRequest fails with a conflict when a live request from->to exists.
	CreateRequest(ctx context.Context, from, to string) (*models.ConnectionRequest, error)
	RequestExists(ctx context.Context, from, to string) (bool, error)
	ListRequests(ctx context.Context, to string) ([]models.ConnectionRequest, error)
	// Accept removes the pending request and records the connection. NotFound
	// when there is no live request.
	Accept(ctx context.Context, from, to string) (*models.Connection, error)
	Reject(ctx context.Context, from, to string) error
	Connected(ctx context.Context, a, b string) (bool, error)
	ListConnections(ctx context.Context, uid string) ([]models.Connection, error)
	DeleteExpiredRequests(ctx context.Context) (int64, error)
}

type GormConnectionStore struct {
	db        *gorm.DB
	retention Retention
}

func NewGormConnectionStore(db *gorm.DB, retention Retention) *GormConnectionStore {
	return &GormConnectionStore{db: db, retention: retention}
}

func (s *GormConnectionStore) CreateRequest(ctx context.Context, from, to string) (*models.ConnectionRequest, error) {
	req := models.ConnectionRequest{ID: utils.NewID(), From: from, To: to, CreatedAt: s.retention.Stamp()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// An expired row for the pair would otherwise trip the unique index.
		if err := tx.Where("from_uid = ? AND to_uid = ? AND created_at <= ?", from, to, s.retention.Cutoff()).
			Delete(&models.ConnectionRequest{}).Error; err != nil {
			return err
		}
		return tx.Create(&req).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.Conflict("request already sent")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to create connection request")
	}
	return &req, nil
}

func (s *GormConnectionStore) RequestExists(ctx context.Context, from, to string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.ConnectionRequest{}).
		Where("from_uid = ? AND to_uid = ? AND created_at > ?", from, to, s.retention.Cutoff()).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Internal(err, "failed to check connection request")
	}
	return n > 0, nil
}

func (s *GormConnectionStore) ListRequests(ctx context.Context, to string) ([]models.ConnectionRequest, error) {
	reqs := []models.ConnectionRequest{}
	err := s.db.WithContext(ctx).
		Where("to_uid = ? AND created_at > ?", to, s.retention.Cutoff()).
		Order("created_at asc, id asc").
		Find(&reqs).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch connection requests")
	}
	return reqs, nil
}

func (s *GormConnectionStore) Accept(ctx context.Context, from, to string) (*models.Connection, error) {
	conn := models.Connection{ID: utils.NewID(), FromUID: from, ToUID: to}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("from_uid = ? AND to_uid = ? AND created_at > ?", from, to, s.retention.Cutoff()).
			Delete(&models.ConnectionRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("connection request not found")
		}
		var existing int64
		err := tx.Model(&models.Connection{}).
			Where("(from_uid = ? AND to_uid = ?) OR (from_uid = ? AND to_uid = ?)", from, to, to, from).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.Conflict("already connected")
		}
		return tx.Create(&conn).Error
	})
	if apperrors.Is(err, apperrors.KindNotFound) || apperrors.Is(err, apperrors.KindConflict) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to accept connection request")
	}
	return &conn, nil
}

func (s *GormConnectionStore) Reject(ctx context.Context, from, to string) error {
	res := s.db.WithContext(ctx).
		Where("from_uid = ? AND to_uid = ? AND created_at > ?", from, to, s.retention.Cutoff()).
		Delete(&models.ConnectionRequest{})
	if res.Error != nil {
		return apperrors.Internal(res.Error, "failed to reject connection request")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("connection request not found")
	}
	return nil
}

func (s *GormConnectionStore) Connected(ctx context.Context, a, b string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("(from_uid = ? AND to_uid = ?) OR (from_uid = ? AND to_uid = ?)", a, b, b, a).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Internal(err, "failed to check connection")
	}
	return n > 0, nil
}

func (s *GormConnectionStore) ListConnections(ctx context.Context, uid string) ([]models.Connection, error) {
	conns := []models.Connection{}
	err := s.db.WithContext(ctx).
		Where("from_uid = ? OR to_uid = ?", uid, uid).
		Order("created_at asc").
		Find(&conns).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch connections")
	}
	return conns, nil
}

func (s *GormConnectionStore) DeleteExpiredRequests(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at <= ?", s.retention.Cutoff()).
		Delete(&models.ConnectionRequest{})
	if res.Error != nil {
		return 0, apperrors.Internal(res.Error, "failed to delete expired connection requests")
	}
	return res.RowsAffected, nil
}

type MemoryConnectionStore struct {
	mu          sync.RWMutex
	retention   Retention
	requests    []models.ConnectionRequest
	connections []models.Connection
}

func NewMemoryConnectionStore(retention Retention) *MemoryConnectionStore {
	return &MemoryConnectionStore{retention: retention}
}

func (s *MemoryConnectionStore) findRequest(from, to string) int {
	for i, r := range s.requests {
		if r.From == from && r.To == to && s.retention.Alive(r.CreatedAt) {
			return i
		}
	}
	return -1
}

func (s *MemoryConnectionStore) CreateRequest(_ context.Context, from, to string) (*models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findRequest(from, to) >= 0 {
		return nil, apperrors.Conflict("request already sent")
	}
	req := models.ConnectionRequest{ID: utils.NewID(), From: from, To: to, CreatedAt: s.retention.Stamp()}
	s.requests = append(s.requests, req)
	return &req, nil
}

func (s *MemoryConnectionStore) RequestExists(_ context.Context, from, to string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findRequest(from, to) >= 0, nil
}

func (s *MemoryConnectionStore) ListRequests(_ context.Context, to string) ([]models.ConnectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ConnectionRequest{}
	for _, r := range s.requests {
		if r.To == to && s.retention.Alive(r.CreatedAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryConnectionStore) removeRequest(i int) {
	s.requests = append(s.requests[:i], s.requests[i+1:]...)
}

func (s *MemoryConnectionStore) Accept(_ context.Context, from, to string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findRequest(from, to)
	if i < 0 {
		return nil, apperrors.NotFound("connection request not found")
	}
	if s.linked(from, to) {
		return nil, apperrors.Conflict("already connected")
	}
	s.removeRequest(i)
	now := s.retention.Stamp()
	conn := models.Connection{ID: utils.NewID(), FromUID: from, ToUID: to, CreatedAt: now, UpdatedAt: now}
	s.connections = append(s.connections, conn)
	return &conn, nil
}

func (s *MemoryConnectionStore) Reject(_ context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findRequest(from, to)
	if i < 0 {
		return apperrors.NotFound("connection request not found")
	}
	s.removeRequest(i)
	return nil
}

func (s *MemoryConnectionStore) Connected(_ context.Context, a, b string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linked(a, b), nil
}

// linked requires s.mu to be held.
func (s *MemoryConnectionStore) linked(a, b string) bool {
	for _, c := range s.connections {
		if (c.FromUID == a && c.ToUID == b) || (c.FromUID == b && c.ToUID == a) {
			return true
		}
	}
	return false
}

func (s *MemoryConnectionStore) ListConnections(_ context.Context, uid string) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Connection{}
	for _, c := range s.connections {
		if c.FromUID == uid || c.ToUID == uid {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryConnectionStore) DeleteExpiredRequests(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := []models.ConnectionRequest{}
	var removed int64
	for _, r := range s.requests {
		if s.retention.Alive(r.CreatedAt) {
			kept = append(kept, r)
			continue
		}
		removed++
	}
	s.requests = kept
	return removed, nil
}
