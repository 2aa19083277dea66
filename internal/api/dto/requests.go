package dto

import "time"

// CreateRideRequest represents a driver offering a new ride
type CreateRideRequest struct {
	PickupLocation       string     `json:"pickup_location" binding:"required"`
	Destination          string     `json:"destination" binding:"required"`
	PickupLatitude       float64    `json:"pickup_latitude" binding:"required"`
	PickupLongitude      float64    `json:"pickup_longitude" binding:"required"`
	DestinationLatitude  float64    `json:"destination_latitude" binding:"required"`
	DestinationLongitude float64    `json:"destination_longitude" binding:"required"`
	ScheduledTime        *time.Time `json:"scheduled_time"`
	VehicleCapacity      int        `json:"vehicle_capacity" binding:"required,min=1"`
	Notes                string     `json:"notes"`
}

// UpdateRideRequest patches an offered ride; absent fields are untouched
type UpdateRideRequest struct {
	PickupLocation  *string    `json:"pickup_location"`
	Destination     *string    `json:"destination"`
	ScheduledTime   *time.Time `json:"scheduled_time"`
	VehicleCapacity *int       `json:"vehicle_capacity"`
	Notes           *string    `json:"notes"`
}

// SeatRequestRequest represents an employee asking for a seat
type SeatRequestRequest struct {
	Message string `json:"message"`
}

// MatchQuery represents a ride search, bound from query parameters
type MatchQuery struct {
	PickupLatitude       float64    `form:"pickup_latitude" binding:"required"`
	PickupLongitude      float64    `form:"pickup_longitude" binding:"required"`
	DestinationLatitude  float64    `form:"destination_latitude" binding:"required"`
	DestinationLongitude float64    `form:"destination_longitude" binding:"required"`
	DepartureTime        *time.Time `form:"departure_time" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ProgressRequest patches in-flight tracking fields
type ProgressRequest struct {
	CurrentLatitude      *float64   `json:"current_latitude"`
	CurrentLongitude     *float64   `json:"current_longitude"`
	Progress             *float64   `json:"progress"`
	EstimatedPickupTime  *time.Time `json:"estimated_pickup_time"`
	EstimatedDropoffTime *time.Time `json:"estimated_dropoff_time"`
}

// RateRideRequest records a passenger rating
type RateRideRequest struct {
	Rating   float64 `json:"rating" binding:"required"`
	Feedback string  `json:"feedback"`
}

// LocationPingRequest reports a position during a ride
type LocationPingRequest struct {
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`
}

// PushTokenRequest registers a device token for push delivery
type PushTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=ios android web"`
}

// RefundRequest reverses a completed payment
type RefundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// NearbyDriversQuery bounds a driver presence search
type NearbyDriversQuery struct {
	Latitude  float64 `form:"latitude" binding:"required"`
	Longitude float64 `form:"longitude" binding:"required"`
	RadiusKM  float64 `form:"radius_km"`
}
