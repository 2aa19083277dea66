package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
)

// TokenRepository persists push tokens, one row per (user, token).
type TokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Register(ctx context.Context, t *notification.PushToken) error {
	query := `INSERT INTO push_tokens (user_id, token, platform, created_at)
		VALUES (:user_id, :token, :platform, :created_at)
		ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("registering push token: %w", err)
	}
	return nil
}

func (r *TokenRepository) Unregister(ctx context.Context, userID uuid.UUID, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM push_tokens WHERE user_id = $1 AND token = $2`, userID, token); err != nil {
		return fmt.Errorf("unregistering push token: %w", err)
	}
	return nil
}

func (r *TokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.PushToken, error) {
	query := `SELECT user_id, token, platform, created_at FROM push_tokens
		WHERE user_id = $1 ORDER BY created_at ASC`
	tokens := []*notification.PushToken{}
	if err := r.db.SelectContext(ctx, &tokens, query, userID); err != nil {
		return nil, fmt.Errorf("listing push tokens: %w", err)
	}
	return tokens, nil
}
