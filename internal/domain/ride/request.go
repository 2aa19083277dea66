package ride

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestStatus represents the state of a seat request
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
	RequestCancelled RequestStatus = "cancelled"
)

// IsValid validates the request status
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestDeclined, RequestCancelled:
		return true
	}
	return false
}

// Request is an employee's bid for a seat on a ride. At most one request
// may exist per (ride, user) pair.
type Request struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	RideID    uuid.UUID     `json:"ride_id" db:"ride_id"`
	UserID    uuid.UUID     `json:"user_id" db:"user_id"`
	Status    RequestStatus `json:"status" db:"status"`
	Message   string        `json:"message,omitempty" db:"message"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// IsPending reports whether the request still awaits a driver decision
func (r *Request) IsPending() bool {
	return r.Status == RequestPending
}

// RequestRepository defines seat request data access
type RequestRepository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	GetByRideAndUser(ctx context.Context, rideID, userID uuid.UUID) (*Request, error)
	Update(ctx context.Context, req *Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRide(ctx context.Context, rideID uuid.UUID) ([]*Request, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Request, error)
}
