package database

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileStore interface {
	FindByUID(ctx context.Context, uid string) (*models.Profile, error)
	// CreateIfAbsent stores p unless a profile with the same uid exists, and
	// returns whichever is stored.
	CreateIfAbsent(ctx context.Context, p *models.Profile) (*models.Profile, error)
	// Upsert applies fn to the stored profile, or to a new one, and saves it.
	Upsert(ctx context.Context, uid string, fn func(p *models.Profile)) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	SetOnline(ctx context.Context, uid string, online bool) error
}

type GormProfileStore struct {
	db *gorm.DB
}

func NewGormProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

func (s *GormProfileStore) FindByUID(ctx context.Context, uid string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch profile")
	}
	return &p, nil
}

func (s *GormProfileStore) CreateIfAbsent(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(p).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to create profile")
	}
	return s.FindByUID(ctx, p.UID)
}

func (s *GormProfileStore) Upsert(ctx context.Context, uid string, fn func(p *models.Profile)) (*models.Profile, error) {
	var out models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("uid = ?", uid).First(&out).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			out = models.Profile{UID: uid}
		}
		fn(&out)
		out.UID = uid
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, apperrors.Internal(err, "failed to save profile")
	}
	return &out, nil
}

func (s *GormProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if err := s.db.WithContext(ctx).Order("uid asc").Find(&profiles).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to fetch users")
	}
	return profiles, nil
}

func (s *GormProfileStore) SetOnline(ctx context.Context, uid string, online bool) error {
	err := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("uid = ?", uid).
		Update("is_online", online).Error
	if err != nil {
		return apperrors.Internal(err, "failed to update presence")
	}
	return nil
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
	now      func() time.Time
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: map[string]models.Profile{}, now: time.Now}
}

func (s *MemoryProfileStore) FindByUID(_ context.Context, uid string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[uid]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return &p, nil
}

func (s *MemoryProfileStore) CreateIfAbsent(_ context.Context, p *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[p.UID]; ok {
		return &existing, nil
	}
	now := s.now().UTC()
	stored := *p
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.profiles[p.UID] = stored
	return &stored, nil
}

func (s *MemoryProfileStore) Upsert(_ context.Context, uid string, fn func(p *models.Profile)) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	p, ok := s.profiles[uid]
	if !ok {
		p = models.Profile{UID: uid, CreatedAt: now}
	}
	fn(&p)
	p.UID = uid
	p.UpdatedAt = now
	s.profiles[uid] = p
	return &p, nil
}

func (s *MemoryProfileStore) List(_ context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func (s *MemoryProfileStore) SetOnline(_ context.Context, uid string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[uid]; ok {
		p.IsOnline = online
		s.profiles[uid] = p
	}
	return nil
}
