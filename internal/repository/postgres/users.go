package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/user"
)

const userColumns = `id, company_id, name, email, phone, is_driver, is_admin, is_active,
	latitude, longitude, rating, created_at, updated_at`

// UserRepository reads the user table owned by the external account
// service; only last-known position is written from here.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("selecting user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) ListDriversByCompany(ctx context.Context, companyID uuid.UUID) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE company_id = $1 AND is_driver = TRUE AND is_active = TRUE ORDER BY name ASC`
	users := []*user.User{}
	if err := r.db.SelectContext(ctx, &users, query, companyID); err != nil {
		return nil, fmt.Errorf("listing drivers: %w", err)
	}
	return users, nil
}

func (r *UserRepository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET latitude = $1, longitude = $2, updated_at = NOW() WHERE id = $3`, lat, lon, id)
	if err != nil {
		return fmt.Errorf("updating user location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
