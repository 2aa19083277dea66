package location

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("location not found")

// Ping is one position report in a ride's ledger. Pings are append-only;
// they are never mutated or deleted.
type Ping struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	RideID    uuid.UUID  `json:"ride_id" db:"ride_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Latitude  float64    `json:"latitude" db:"latitude"`
	Longitude float64    `json:"longitude" db:"longitude"`
	Accuracy  *float64   `json:"accuracy,omitempty" db:"accuracy"`
	Speed     *float64   `json:"speed,omitempty" db:"speed"`
	Heading   *float64   `json:"heading,omitempty" db:"heading"`
	IsDriver  bool       `json:"is_driver" db:"is_driver"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}

// Repository defines ledger access: append plus recency-ordered reads.
type Repository interface {
	Append(ctx context.Context, p *Ping) error
	RecentByRide(ctx context.Context, rideID uuid.UUID, limit int) ([]*Ping, error)
}
