package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

// RealtimeSender pushes a message to a connected user. Satisfied by
// *realtime.Hub.
type RealtimeSender interface {
	SendToUser(userID uuid.UUID, msg realtime.Message) bool
}

// Dispatcher delivers a notification to a registered device token.
// The default implementation only logs; a real push provider (APNs,
// FCM) slots in behind this interface.
type Dispatcher interface {
	Dispatch(ctx context.Context, token notification.PushToken, n *notification.Notification) error
}

// LogDispatcher records would-be push deliveries in the log.
type LogDispatcher struct {
	Log *logger.Logger
}

func (d *LogDispatcher) Dispatch(ctx context.Context, token notification.PushToken, n *notification.Notification) error {
	d.Log.Info("push notification dispatched",
		logger.String("user_id", n.UserID.String()),
		logger.String("platform", token.Platform),
		logger.String("type", string(n.Type)),
	)
	return nil
}

// Service persists notifications and fans them out over the realtime
// hub and registered push tokens. Fan-out is best effort; the durable
// record is the source of truth.
type Service struct {
	repo       notification.Repository
	tokens     notification.TokenRepository
	hub        RealtimeSender
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewService(repo notification.Repository, tokens notification.TokenRepository, hub RealtimeSender, dispatcher Dispatcher, log *logger.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, hub: hub, dispatcher: dispatcher, log: log}
}

// Notify stores the notification and attempts delivery. Only the store
// failure is returned; delivery failures are logged and swallowed.
func (s *Service) Notify(ctx context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = notification.PriorityMedium
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.SendToUser(n.UserID, realtime.NewMessage(realtime.MessageNotification, n))
	}
	if s.dispatcher != nil && s.tokens != nil {
		tokens, err := s.tokens.ListByUser(ctx, n.UserID)
		if err != nil {
			s.log.Warn("listing push tokens failed", logger.Err(err))
			return nil
		}
		for _, t := range tokens {
			if err := s.dispatcher.Dispatch(ctx, *t, n); err != nil {
				s.log.Warn("push dispatch failed",
					logger.String("user_id", n.UserID.String()),
					logger.Err(err),
				)
			}
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit, unreadOnly)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete is not supported: notification history is append-only and
// read-marking is the only mutation clients get.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return notification.ErrUnsupported
}

func (s *Service) RegisterToken(ctx context.Context, t *notification.PushToken) error {
	return s.tokens.Register(ctx, t)
}

func (s *Service) UnregisterToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.tokens.Unregister(ctx, userID, token)
}
