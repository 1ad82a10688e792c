package services

import (
	"context"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/storage"
	"go.uber.org/zap"
)

type ProfileService struct {
	store  database.ProfileStore
	assets storage.AssetStore
	folder string
	log    *zap.SugaredLogger
}

func NewProfileService(store database.ProfileStore, assets storage.AssetStore, folder string, log *zap.SugaredLogger) *ProfileService {
	return &ProfileService{store: store, assets: assets, folder: folder, log: log}
}

// Register creates the caller's profile on first login and returns the stored
// one afterwards.
func (s *ProfileService) Register(ctx context.Context, caller string, p *models.Profile) (*models.Profile, error) {
	if p.UID == "" {
		return nil, apperrors.Validation("uid is required")
	}
	if caller != p.UID {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.CreateIfAbsent(ctx, &models.Profile{
		UID:      p.UID,
		Name:     p.Name,
		Email:    p.Email,
		PhotoURL: p.PhotoURL,
	})
}

func (s *ProfileService) Get(ctx context.Context, caller, uid string) (*models.Profile, error) {
	if caller != uid {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.FindByUID(ctx, uid)
}

func (s *ProfileService) GetPublic(ctx context.Context, uid string) (*models.Profile, error) {
	return s.store.FindByUID(ctx, uid)
}

func (s *ProfileService) Update(ctx context.Context, caller, uid string, u *models.ProfileUpdate) (*models.Profile, error) {
	if caller != uid {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.Upsert(ctx, uid, u.Apply)
}

func (s *ProfileService) Directory(ctx context.Context) ([]models.PublicProfile, error) {
	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicProfile, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].Public())
	}
	return out, nil
}

// UploadCertificate stores a certificate image and records it on the
// caller's profile.
func (s *ProfileService) UploadCertificate(ctx context.Context, caller string, up *Upload) (*storage.StoredAsset, error) {
	if up == nil || up.Body == nil {
		return nil, apperrors.Validation("no image uploaded")
	}
	stored, err := s.assets.Put(ctx, s.folder, storage.Asset{
		Name:        up.FileName,
		ContentType: up.ContentType,
		Size:        up.Size,
		Body:        up.Body,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.store.Upsert(ctx, caller, func(p *models.Profile) {
		p.Certifications = append(p.Certifications, stored.URL)
	})
	if err != nil {
		s.log.Warnw("certificate stored but not recorded on profile", "uid", caller, "error", err)
	}
	return stored, nil
}

// SetOnline flips the presence flag shown in the directory.
func (s *ProfileService) SetOnline(ctx context.Context, uid string, online bool) {
	if err := s.store.SetOnline(ctx, uid, online); err != nil {
		s.log.Warnw("failed to update presence", "uid", uid, "error", err)
	}
}
