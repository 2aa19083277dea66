package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
)

// notificationRow maps the table shape; the payload travels as jsonb.
type notificationRow struct {
	ID        uuid.UUID             `db:"id"`
	UserID    uuid.UUID             `db:"user_id"`
	CompanyID uuid.UUID             `db:"company_id"`
	Type      notification.Type     `db:"type"`
	Title     string                `db:"title"`
	Message   string                `db:"message"`
	Data      []byte                `db:"data"`
	Priority  notification.Priority `db:"priority"`
	Read      bool                  `db:"is_read"`
	CreatedAt time.Time             `db:"created_at"`
}

func (row *notificationRow) toDomain() (*notification.Notification, error) {
	n := &notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		CompanyID: row.CompanyID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Priority:  row.Priority,
		Read:      row.Read,
		CreatedAt: row.CreatedAt,
	}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &n.Payload); err != nil {
			return nil, fmt.Errorf("decoding notification payload: %w", err)
		}
	}
	return n, nil
}

// NotificationRepository persists notifications in postgres. There is
// no delete: history is append-only with read-marking.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	data, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("encoding notification payload: %w", err)
	}
	row := notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		CompanyID: n.CompanyID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      data,
		Priority:  n.Priority,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	query := `INSERT INTO notifications (id, user_id, company_id, type, title, message, data, priority, is_read, created_at)
		VALUES (:id, :user_id, :company_id, :type, :title, :message, :data, :priority, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]*notification.Notification, error) {
	query := `SELECT id, user_id, company_id, type, title, message, data, priority, is_read, created_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows := []notificationRow{}
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	out := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		n, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}
