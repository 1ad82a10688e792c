package services

import (
	"context"
	"io"
	"strings"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/events"
	"github.com/anjiri1684/studlyf_network/metrics"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/storage"
	"go.uber.org/zap"
)

// Realtime event names pushed to clients.
const (
	EventMessageNew  = "message:new"
	EventMessageSent = "message:sent"
	EventMessageRead = "message:read"
)

// Notifier pushes an event to every live connection of identity. Delivery is
// best effort.
type Notifier interface {
	Emit(identity, event string, payload any) error
}

// Upload is a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type MessagingService struct {
	store     database.MessageStore
	assets    storage.AssetStore
	notifier  Notifier
	publisher events.Publisher
	folder    string
	log       *zap.SugaredLogger
}

func NewMessagingService(
	store database.MessageStore,
	assets storage.AssetStore,
	notifier Notifier,
	publisher events.Publisher,
	folder string,
	log *zap.SugaredLogger,
) *MessagingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &MessagingService{
		store:     store,
		assets:    assets,
		notifier:  notifier,
		publisher: publisher,
		folder:    folder,
		log:       log,
	}
}

func requireParticipants(from, to string) error {
	if from == "" || to == "" {
		return apperrors.Validation("from and to are required")
	}
	return nil
}

func requireSender(caller, from string) error {
	if caller != from {
		return apperrors.Authorization("unauthorized access")
	}
	return nil
}

func (s *MessagingService) SendText(ctx context.Context, caller, from, to, text string) (*models.Message, error) {
	m := &models.Message{From: from, To: to, Content: models.Text{Body: text}}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := requireSender(caller, from); err != nil {
		return nil, err
	}
	return s.commit(ctx, m)
}

func (s *MessagingService) SendImage(ctx context.Context, caller, from, to string, up *Upload) (*models.Message, error) {
	if err := requireParticipants(from, to); err != nil {
		return nil, err
	}
	if up == nil || up.Body == nil {
		return nil, apperrors.Validation("no image uploaded")
	}
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return nil, apperrors.Validation("uploaded file is not an image")
	}
	if err := requireSender(caller, from); err != nil {
		return nil, err
	}

	stored, err := s.putAsset(ctx, up)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, &models.Message{
		From:    from,
		To:      to,
		Content: models.Image{MediaURL: stored.URL, MediaType: stored.ContentType},
	})
}

func (s *MessagingService) SendFile(ctx context.Context, caller, from, to string, up *Upload) (*models.Message, error) {
	if err := requireParticipants(from, to); err != nil {
		return nil, err
	}
	if up == nil || up.Body == nil {
		return nil, apperrors.Validation("no file uploaded")
	}
	if up.FileName == "" {
		return nil, apperrors.Validation("fileName is required")
	}
	if err := requireSender(caller, from); err != nil {
		return nil, err
	}
	if up.ContentType == "" {
		up.ContentType = "application/octet-stream"
	}

	stored, err := s.putAsset(ctx, up)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, &models.Message{
		From: from,
		To:   to,
		Content: models.File{
			MediaURL:  stored.URL,
			MediaType: stored.ContentType,
			FileName:  up.FileName,
			FileSize:  stored.Size,
		},
	})
}

// Forward copies the content of messageID into a new unread message from
// from to to. Read state and timestamps are not carried over.
func (s *MessagingService) Forward(ctx context.Context, caller, from, to, messageID string) (*models.Message, error) {
	if err := requireParticipants(from, to); err != nil {
		return nil, err
	}
	if messageID == "" {
		return nil, apperrors.Validation("messageId is required")
	}
	if err := requireSender(caller, from); err != nil {
		return nil, err
	}

	src, err := s.store.FindByID(ctx, messageID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.NotFound("original message not found")
		}
		return nil, err
	}
	origin := src.ID
	return s.commit(ctx, &models.Message{
		From:      from,
		To:        to,
		Content:   src.Content,
		ForwardOf: &origin,
	})
}

func (s *MessagingService) ListBetween(ctx context.Context, caller, uid1, uid2 string) ([]models.Message, error) {
	if uid1 == "" || uid2 == "" {
		return nil, apperrors.Validation("both participants are required")
	}
	if caller != uid1 && caller != uid2 {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.FindByPair(ctx, uid1, uid2)
}

func (s *MessagingService) UnreadCounts(ctx context.Context, caller, uid string) (map[string]int64, error) {
	if uid == "" {
		return nil, apperrors.Validation("uid is required")
	}
	if caller != uid {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.CountUnreadGroupedBySender(ctx, uid)
}

// MarkRead marks everything peer sent to the caller as read and notifies both
// sides.
func (s *MessagingService) MarkRead(ctx context.Context, caller, peer string) (*models.ReadReceipt, error) {
	if peer == "" {
		return nil, apperrors.Validation("peerId is required")
	}
	if caller == "" {
		return nil, apperrors.Authentication("missing caller identity")
	}

	n, err := s.store.MarkReadBulk(ctx, peer, caller)
	if err != nil {
		return nil, err
	}
	metrics.MessagesMarkedRead.Add(float64(n))

	receipt := &models.ReadReceipt{By: caller, Peer: peer, Modified: n}
	s.notify(peer, EventMessageRead, receipt)
	s.notify(caller, EventMessageRead, receipt)
	s.publish(ctx, caller, events.MessageRead, receipt)
	return receipt, nil
}

func (s *MessagingService) putAsset(ctx context.Context, up *Upload) (*storage.StoredAsset, error) {
	stored, err := s.assets.Put(ctx, s.folder, storage.Asset{
		Name:        up.FileName,
		ContentType: up.ContentType,
		Size:        up.Size,
		Body:        up.Body,
	})
	if err != nil {
		return nil, err
	}
	if stored.ContentType == "" {
		stored.ContentType = up.ContentType
	}
	return stored, nil
}

// commit persists m, then notifies both participants and mirrors the write.
func (s *MessagingService) commit(ctx context.Context, m *models.Message) (*models.Message, error) {
	stored, err := s.store.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	metrics.MessagesCreated.WithLabelValues(string(stored.Type())).Inc()

	s.notify(stored.To, EventMessageNew, stored)
	s.notify(stored.From, EventMessageSent, stored)
	s.publish(ctx, stored.To, events.MessageCreated, stored)
	return stored, nil
}

func (s *MessagingService) notify(identity, event string, payload any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Emit(identity, event, payload); err != nil {
		s.log.Warnw("realtime emit failed", "identity", identity, "event", event, "error", err)
	}
}

func (s *MessagingService) publish(ctx context.Context, key, eventType string, payload any) {
	publish(ctx, s.publisher, s.log, key, eventType, payload)
}

func publish(ctx context.Context, p events.Publisher, log *zap.SugaredLogger, key, eventType string, payload any) {
	ev, err := events.New(eventType, payload)
	if err != nil {
		log.Errorw("failed to encode event", "type", eventType, "error", err)
		return
	}
	if err := p.Publish(ctx, key, ev); err != nil {
		log.Warnw("failed to publish event", "type", eventType, "error", err)
	}
}
