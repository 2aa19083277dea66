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

const rideColumns = `id, company_id, driver_id, pickup_location, destination,
	pickup_latitude, pickup_longitude, destination_latitude, destination_longitude,
	scheduled_time, vehicle_capacity, confirmed_passengers, status, fare,
	distance_km, duration_minutes, current_latitude, current_longitude,
	ride_progress, pickup_time, dropoff_time, estimated_pickup_time,
	estimated_dropoff_time, actual_start_time, actual_end_time, payment_status,
	payment_method, rating, feedback, notes, created_at, updated_at`

// RideRepository persists rides in postgres.
type RideRepository struct {
	db *sqlx.DB
}

func NewRideRepository(db *sqlx.DB) *RideRepository {
	return &RideRepository{db: db}
}

func (r *RideRepository) Create(ctx context.Context, rd *ride.Ride) error {
	query := `INSERT INTO rides (` + rideColumns + `) VALUES (
		:id, :company_id, :driver_id, :pickup_location, :destination,
		:pickup_latitude, :pickup_longitude, :destination_latitude, :destination_longitude,
		:scheduled_time, :vehicle_capacity, :confirmed_passengers, :status, :fare,
		:distance_km, :duration_minutes, :current_latitude, :current_longitude,
		:ride_progress, :pickup_time, :dropoff_time, :estimated_pickup_time,
		:estimated_dropoff_time, :actual_start_time, :actual_end_time, :payment_status,
		:payment_method, :rating, :feedback, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rd); err != nil {
		return fmt.Errorf("inserting ride: %w", err)
	}
	return nil
}

func (r *RideRepository) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	var rd ride.Ride
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	if err := r.db.GetContext(ctx, &rd, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ride.ErrRideNotFound
		}
		return nil, fmt.Errorf("selecting ride: %w", err)
	}
	return &rd, nil
}

func (r *RideRepository) Update(ctx context.Context, rd *ride.Ride) error {
	query := `UPDATE rides SET
		pickup_location = :pickup_location,
		destination = :destination,
		pickup_latitude = :pickup_latitude,
		pickup_longitude = :pickup_longitude,
		destination_latitude = :destination_latitude,
		destination_longitude = :destination_longitude,
		scheduled_time = :scheduled_time,
		vehicle_capacity = :vehicle_capacity,
		confirmed_passengers = :confirmed_passengers,
		status = :status,
		fare = :fare,
		distance_km = :distance_km,
		duration_minutes = :duration_minutes,
		current_latitude = :current_latitude,
		current_longitude = :current_longitude,
		ride_progress = :ride_progress,
		pickup_time = :pickup_time,
		dropoff_time = :dropoff_time,
		estimated_pickup_time = :estimated_pickup_time,
		estimated_dropoff_time = :estimated_dropoff_time,
		actual_start_time = :actual_start_time,
		actual_end_time = :actual_end_time,
		payment_status = :payment_status,
		payment_method = :payment_method,
		rating = :rating,
		feedback = :feedback,
		notes = :notes,
		updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, rd)
	if err != nil {
		return fmt.Errorf("updating ride: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ride.ErrRideNotFound
	}
	return nil
}

func (r *RideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting ride: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ride.ErrRideNotFound
	}
	return nil
}

func (r *RideRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, filter ride.ListFilter) ([]*ride.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE company_id = $1`
	args := []interface{}{companyID}
	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	rides := []*ride.Ride{}
	if err := r.db.SelectContext(ctx, &rides, query, args...); err != nil {
		return nil, fmt.Errorf("listing rides: %w", err)
	}
	return rides, nil
}

func (r *RideRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`
	rides := []*ride.Ride{}
	if err := r.db.SelectContext(ctx, &rides, query, driverID); err != nil {
		return nil, fmt.Errorf("listing driver rides: %w", err)
	}
	return rides, nil
}
