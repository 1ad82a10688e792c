package services

import (
	"context"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/events"
	"github.com/anjiri1684/studlyf_network/models"
	"go.uber.org/zap"
)

const (
	EventConnectionRequest  = "connection:request"
	EventConnectionAccepted = "connection:accepted"
)

type ConnectionService struct {
	store     database.ConnectionStore
	notifier  Notifier
	publisher events.Publisher
	log       *zap.SugaredLogger
}

func NewConnectionService(store database.ConnectionStore, notifier Notifier, publisher events.Publisher, log *zap.SugaredLogger) *ConnectionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ConnectionService{store: store, notifier: notifier, publisher: publisher, log: log}
}

func (s *ConnectionService) Request(ctx context.Context, caller, from, to string) (*models.ConnectionRequest, error) {
	if err := requireParticipants(from, to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, apperrors.Validation("cannot connect with yourself")
	}
	if caller != from {
		return nil, apperrors.Authorization("unauthorized access")
	}

	pending, err := s.store.RequestExists(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperrors.Conflict("request already sent")
	}
	connected, err := s.store.Connected(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if connected {
		return nil, apperrors.Conflict("already connected")
	}

	req, err := s.store.CreateRequest(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.notify(to, EventConnectionRequest, req)
	publish(ctx, s.publisher, s.log, to, events.ConnectionRequested, req)
	return req, nil
}

// Accept is performed by the recipient of the request.
func (s *ConnectionService) Accept(ctx context.Context, caller, from, to string) (*models.Connection, error) {
	if err := requireParticipants(from, to); err != nil {
		return nil, err
	}
	if caller != to {
		return nil, apperrors.Authorization("unauthorized access")
	}

	conn, err := s.store.Accept(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.notify(from, EventConnectionAccepted, conn)
	publish(ctx, s.publisher, s.log, from, events.ConnectionAccepted, conn)
	return conn, nil
}

func (s *ConnectionService) Reject(ctx context.Context, caller, from, to string) error {
	if err := requireParticipants(from, to); err != nil {
		return err
	}
	if caller != to {
		return apperrors.Authorization("unauthorized access")
	}

	if err := s.store.Reject(ctx, from, to); err != nil {
		return err
	}
	publish(ctx, s.publisher, s.log, from, events.ConnectionRejected, map[string]string{"from": from, "to": to})
	return nil
}

func (s *ConnectionService) ListRequests(ctx context.Context, caller, uid string) ([]models.ConnectionRequest, error) {
	if caller != uid {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.ListRequests(ctx, uid)
}

func (s *ConnectionService) ListConnections(ctx context.Context, caller, uid string) ([]models.Connection, error) {
	if caller != uid {
		return nil, apperrors.Authorization("unauthorized access")
	}
	return s.store.ListConnections(ctx, uid)
}

func (s *ConnectionService) notify(identity, event string, payload any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Emit(identity, event, payload); err != nil {
		s.log.Warnw("realtime emit failed", "identity", identity, "event", event, "error", err)
	}
}
