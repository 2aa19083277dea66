package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
)

const requestColumns = `id, ride_id, user_id, status, message, created_at, updated_at`

// RequestRepository persists seat requests in postgres. The unique
// index on (ride_id, user_id) backs the one-request-per-pair rule.
type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, req *ride.Request) error {
	query := `INSERT INTO ride_requests (` + requestColumns + `) VALUES (
		:id, :ride_id, :user_id, :status, :message, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("inserting ride request: %w", err)
	}
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*ride.Request, error) {
	var req ride.Request
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ride.ErrRequestNotFound
		}
		return nil, fmt.Errorf("selecting ride request: %w", err)
	}
	return &req, nil
}

func (r *RequestRepository) GetByRideAndUser(ctx context.Context, rideID, userID uuid.UUID) (*ride.Request, error) {
	var req ride.Request
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE ride_id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &req, query, rideID, userID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ride.ErrRequestNotFound
		}
		return nil, fmt.Errorf("selecting ride request: %w", err)
	}
	return &req, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *ride.Request) error {
	query := `UPDATE ride_requests SET status = :status, message = :message,
		updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("updating ride request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ride.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ride_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ride request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ride.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) ListByRide(ctx context.Context, rideID uuid.UUID) ([]*ride.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE ride_id = $1 ORDER BY created_at ASC`
	reqs := []*ride.Request{}
	if err := r.db.SelectContext(ctx, &reqs, query, rideID); err != nil {
		return nil, fmt.Errorf("listing ride requests: %w", err)
	}
	return reqs, nil
}

func (r *RequestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ride.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM ride_requests WHERE user_id = $1 ORDER BY created_at DESC`
	reqs := []*ride.Request{}
	if err := r.db.SelectContext(ctx, &reqs, query, userID); err != nil {
		return nil, fmt.Errorf("listing user requests: %w", err)
	}
	return reqs, nil
}
