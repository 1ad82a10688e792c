package database

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/utils"
	"gorm.io/gorm"
)

type messageRecord struct {
	ID        string  `gorm:"primaryKey;size:36"`
	FromUID   string  `gorm:"column:from_uid;size:128;not null;index:idx_messages_pair,priority:1"`
	ToUID     string  `gorm:"column:to_uid;size:128;not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1"`
	Type      string  `gorm:"size:16;not null"`
	Text      *string `gorm:"type:text"`
	MediaURL  *string `gorm:"size:1024"`
	MediaType *string `gorm:"size:255"`
	FileName  *string `gorm:"size:512"`
	FileSize  *int64
	ForwardOf *string   `gorm:"size:36"`
	Read      bool      `gorm:"column:is_read;not null;index:idx_messages_unread,priority:2"`
	CreatedAt time.Time `gorm:"not null;index"`
}

func (messageRecord) TableName() string { return "messages" }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRecord(m *models.Message) messageRecord {
	f := models.FieldsOf(m.Content)
	rec := messageRecord{
		ID:        m.ID,
		FromUID:   m.From,
		ToUID:     m.To,
		Type:      string(f.Type),
		Text:      optional(f.Text),
		MediaURL:  optional(f.MediaURL),
		MediaType: optional(f.MediaType),
		FileName:  optional(f.FileName),
		ForwardOf: m.ForwardOf,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
	if f.Type == models.TypeFile {
		size := f.FileSize
		rec.FileSize = &size
	}
	return rec
}

func (r *messageRecord) toMessage() (models.Message, error) {
	f := models.ContentFields{
		Type:      models.MessageType(r.Type),
		Text:      deref(r.Text),
		MediaURL:  deref(r.MediaURL),
		MediaType: deref(r.MediaType),
		FileName:  deref(r.FileName),
	}
	if r.FileSize != nil {
		f.FileSize = *r.FileSize
	}
	content, err := f.Content()
	if err != nil {
		return models.Message{}, apperrors.Internal(err, "stored message "+r.ID+" is corrupt")
	}
	return models.Message{
		ID:        r.ID,
		From:      r.FromUID,
		To:        r.ToUID,
		Content:   content,
		ForwardOf: r.ForwardOf,
		Read:      r.Read,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

type PostgresMessageStore struct {
	db        *gorm.DB
	retention Retention
}

func NewPostgresMessageStore(db *gorm.DB, retention Retention) *PostgresMessageStore {
	return &PostgresMessageStore{db: db, retention: retention}
}

func (s *PostgresMessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	out, err := prepareMessage(m, s.retention, utils.NewID())
	if err != nil {
		return nil, err
	}
	rec := toRecord(out)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, apperrors.Internal(err, "failed to store message")
	}
	return out, nil
}

func (s *PostgresMessageStore) FindByPair(ctx context.Context, a, b string) ([]models.Message, error) {
	var recs []messageRecord
	err := s.db.WithContext(ctx).
		Where("((from_uid = ? AND to_uid = ?) OR (from_uid = ? AND to_uid = ?)) AND created_at > ?",
			a, b, b, a, s.retention.Cutoff()).
		Order("created_at asc, id asc").
		Find(&recs).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch messages")
	}

	out := make([]models.Message, 0, len(recs))
	for i := range recs {
		m, err := recs[i].toMessage()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *PostgresMessageStore) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var rec messageRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND created_at > ?", id, s.retention.Cutoff()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("message %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal(err, "failed to fetch message")
	}
	m, err := rec.toMessage()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresMessageStore) MarkReadBulk(ctx context.Context, peer, reader string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&messageRecord{}).
		Where("from_uid = ? AND to_uid = ? AND is_read = ? AND created_at > ?", peer, reader, false, s.retention.Cutoff()).
		Update("is_read", true)
	if res.Error != nil {
		return 0, apperrors.Internal(res.Error, "failed to mark messages read")
	}
	return res.RowsAffected, nil
}

func (s *PostgresMessageStore) CountUnreadGroupedBySender(ctx context.Context, reader string) (map[string]int64, error) {
	var rows []struct {
		FromUID string
		Count   int64
	}
	err := s.db.WithContext(ctx).
		Model(&messageRecord{}).
		Select("from_uid, COUNT(*) AS count").
		Where("to_uid = ? AND is_read = ? AND created_at > ?", reader, false, s.retention.Cutoff()).
		Group("from_uid").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(err, "failed to count unread messages")
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.FromUID] = r.Count
	}
	return counts, nil
}

func (s *PostgresMessageStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at <= ?", s.retention.Cutoff()).
		Delete(&messageRecord{})
	if res.Error != nil {
		return 0, apperrors.Internal(res.Error, "failed to delete expired messages")
	}
	return res.RowsAffected, nil
}
