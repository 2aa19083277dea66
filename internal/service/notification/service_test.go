package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

type memNotificationRepo struct {
	items     []*notification.Notification
	createErr error
}

func (m *memNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, n)
	return nil
}

func (m *memNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := m.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *memNotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	for _, n := range m.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (m *memNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

type memTokenRepo struct {
	tokens []*notification.PushToken
}

func (m *memTokenRepo) Register(ctx context.Context, t *notification.PushToken) error {
	m.tokens = append(m.tokens, t)
	return nil
}

func (m *memTokenRepo) Unregister(ctx context.Context, userID uuid.UUID, token string) error {
	for i, t := range m.tokens {
		if t.UserID == userID && t.Token == token {
			m.tokens = append(m.tokens[:i], m.tokens[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.PushToken, error) {
	var out []*notification.PushToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type recordingSender struct {
	sent []realtime.Message
}

func (r *recordingSender) SendToUser(userID uuid.UUID, msg realtime.Message) bool {
	r.sent = append(r.sent, msg)
	return true
}

type countingDispatcher struct {
	calls int
}

func (c *countingDispatcher) Dispatch(ctx context.Context, token notification.PushToken, n *notification.Notification) error {
	c.calls++
	return nil
}

func newTestService() (*Service, *memNotificationRepo, *memTokenRepo, *recordingSender, *countingDispatcher) {
	repo := &memNotificationRepo{}
	tokens := &memTokenRepo{}
	sender := &recordingSender{}
	dispatcher := &countingDispatcher{}
	svc := NewService(repo, tokens, sender, dispatcher, logger.NewNop())
	return svc, repo, tokens, sender, dispatcher
}

func TestNotify_PersistsAndDelivers(t *testing.T) {
	svc, repo, _, sender, _ := newTestService()
	userID := uuid.New()

	err := svc.Notify(context.Background(), &notification.Notification{
		UserID:  userID,
		Type:    notification.TypeRideAccepted,
		Title:   "Seat confirmed",
		Message: "Your driver accepted your request",
	})

	require.NoError(t, err)
	require.Len(t, repo.items, 1)
	assert.NotEqual(t, uuid.Nil, repo.items[0].ID)
	assert.Equal(t, notification.PriorityMedium, repo.items[0].Priority)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, realtime.MessageNotification, sender.sent[0].Type)
}

func TestNotify_StoreFailureSkipsDelivery(t *testing.T) {
	svc, repo, _, sender, dispatcher := newTestService()
	repo.createErr = errors.New("db down")

	err := svc.Notify(context.Background(), &notification.Notification{
		UserID: uuid.New(),
		Type:   notification.TypeSystemMessage,
	})

	assert.Error(t, err)
	assert.Empty(t, sender.sent)
	assert.Zero(t, dispatcher.calls)
}

func TestNotify_DispatchesToRegisteredTokens(t *testing.T) {
	svc, _, _, _, dispatcher := newTestService()
	userID := uuid.New()

	require.NoError(t, svc.RegisterToken(context.Background(), &notification.PushToken{
		UserID: userID, Token: "tok-1", Platform: "ios", CreatedAt: time.Now(),
	}))
	require.NoError(t, svc.RegisterToken(context.Background(), &notification.PushToken{
		UserID: userID, Token: "tok-2", Platform: "android", CreatedAt: time.Now(),
	}))

	err := svc.Notify(context.Background(), &notification.Notification{
		UserID: userID,
		Type:   notification.TypeRideStarted,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, dispatcher.calls)
}

func TestMarkReadFlow(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(context.Background(), &notification.Notification{
			UserID: userID,
			Type:   notification.TypeSystemMessage,
		}))
	}

	count, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	list, err := svc.List(context.Background(), userID, 0, true)
	require.NoError(t, err)
	require.Len(t, list, 3)

	require.NoError(t, svc.MarkRead(context.Background(), list[0].ID, userID))
	count, err = svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	marked, err := svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	count, err = svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete_Unsupported(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, notification.ErrUnsupported)
}
