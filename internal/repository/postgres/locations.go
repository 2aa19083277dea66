package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/location"
)

const pingColumns = `id, ride_id, user_id, latitude, longitude, accuracy, speed, heading, is_driver, timestamp`

// LocationRepository is the append-only ride location ledger.
type LocationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Append(ctx context.Context, p *location.Ping) error {
	query := `INSERT INTO ride_locations (` + pingColumns + `) VALUES (
		:id, :ride_id, :user_id, :latitude, :longitude, :accuracy, :speed, :heading, :is_driver, :timestamp)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("inserting location ping: %w", err)
	}
	return nil
}

func (r *LocationRepository) RecentByRide(ctx context.Context, rideID uuid.UUID, limit int) ([]*location.Ping, error) {
	query := `SELECT ` + pingColumns + ` FROM ride_locations
		WHERE ride_id = $1 ORDER BY timestamp DESC LIMIT $2`
	pings := []*location.Ping{}
	if err := r.db.SelectContext(ctx, &pings, query, rideID, limit); err != nil {
		return nil, fmt.Errorf("listing location pings: %w", err)
	}
	return pings, nil
}
