package ride

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status represents the ride lifecycle state
type Status string

const (
	StatusAvailable  Status = "available"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus tracks payment settlement separately from the ride lifecycle
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Ride is a driver-offered trip with fixed seat capacity
type Ride struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	CompanyID            uuid.UUID      `json:"company_id" db:"company_id"`
	DriverID             uuid.UUID      `json:"driver_id" db:"driver_id"`
	PickupLocation       string         `json:"pickup_location" db:"pickup_location"`
	Destination          string         `json:"destination" db:"destination"`
	PickupLatitude       float64        `json:"pickup_latitude" db:"pickup_latitude"`
	PickupLongitude      float64        `json:"pickup_longitude" db:"pickup_longitude"`
	DestinationLatitude  float64        `json:"destination_latitude" db:"destination_latitude"`
	DestinationLongitude float64        `json:"destination_longitude" db:"destination_longitude"`
	ScheduledTime        *time.Time     `json:"scheduled_time,omitempty" db:"scheduled_time"`
	VehicleCapacity      int            `json:"vehicle_capacity" db:"vehicle_capacity"`
	ConfirmedPassengers  int            `json:"confirmed_passengers" db:"confirmed_passengers"`
	Status               Status         `json:"status" db:"status"`
	Fare                 *float64       `json:"fare,omitempty" db:"fare"`
	DistanceKM           float64        `json:"distance_km" db:"distance_km"`
	DurationMinutes      *int           `json:"duration_minutes,omitempty" db:"duration_minutes"`
	CurrentLatitude      *float64       `json:"current_latitude,omitempty" db:"current_latitude"`
	CurrentLongitude     *float64       `json:"current_longitude,omitempty" db:"current_longitude"`
	RideProgress         float64        `json:"ride_progress" db:"ride_progress"`
	PickupTime           *time.Time     `json:"pickup_time,omitempty" db:"pickup_time"`
	DropoffTime          *time.Time     `json:"dropoff_time,omitempty" db:"dropoff_time"`
	EstimatedPickupTime  *time.Time     `json:"estimated_pickup_time,omitempty" db:"estimated_pickup_time"`
	EstimatedDropoffTime *time.Time     `json:"estimated_dropoff_time,omitempty" db:"estimated_dropoff_time"`
	ActualStartTime      *time.Time     `json:"actual_start_time,omitempty" db:"actual_start_time"`
	ActualEndTime        *time.Time     `json:"actual_end_time,omitempty" db:"actual_end_time"`
	PaymentStatus        PaymentStatus  `json:"payment_status" db:"payment_status"`
	PaymentMethod        string         `json:"payment_method,omitempty" db:"payment_method"`
	Rating               *float64       `json:"rating,omitempty" db:"rating"`
	Feedback             string         `json:"feedback,omitempty" db:"feedback"`
	Notes                string         `json:"notes,omitempty" db:"notes"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}

// HasCapacity reports whether another passenger can be seated
func (r *Ride) HasCapacity() bool {
	return r.ConfirmedPassengers < r.VehicleCapacity
}

// CanAcceptRequests reports whether seat requests may still be accepted
func (r *Ride) CanAcceptRequests() bool {
	return r.Status == StatusAvailable
}

// CanStart reports whether the ride can transition to in_progress
func (r *Ride) CanStart() bool {
	return r.Status == StatusConfirmed && r.ConfirmedPassengers >= 1
}

// CanComplete reports whether the ride can transition to completed
func (r *Ride) CanComplete() bool {
	return r.Status == StatusInProgress
}

// CanCancel reports whether the ride can transition to cancelled.
// Cancellation branches only from available or confirmed.
func (r *Ride) CanCancel() bool {
	return r.Status == StatusAvailable || r.Status == StatusConfirmed
}

// TryConfirm flips an available ride with at least one confirmed passenger
// to confirmed. It reports whether the transition fired; subsequent
// acceptances up to capacity must not re-fire it.
func (r *Ride) TryConfirm() bool {
	if r.Status == StatusAvailable && r.ConfirmedPassengers >= 1 {
		r.Status = StatusConfirmed
		return true
	}
	return false
}

// ListFilter narrows company-scoped ride listings
type ListFilter struct {
	Status *Status
	Limit  int
}

// Repository defines ride data access
type Repository interface {
	Create(ctx context.Context, r *Ride) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ride, error)
	Update(ctx context.Context, r *Ride) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, filter ListFilter) ([]*Ride, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Ride, error)
}
