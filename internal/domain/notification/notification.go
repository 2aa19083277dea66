package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("notification not found")
	ErrUnsupported = errors.New("operation not supported")
)

// Type is the closed set of notification kinds
type Type string

const (
	TypeRideRequest      Type = "ride_request"
	TypeRideAccepted     Type = "ride_accepted"
	TypeRideDeclined     Type = "ride_declined"
	TypeRideStarted      Type = "ride_started"
	TypeRideCompleted    Type = "ride_completed"
	TypeRideCancelled    Type = "ride_cancelled"
	TypePaymentProcessed Type = "payment_processed"
	TypePaymentFailed    Type = "payment_failed"
	TypeSystemMessage    Type = "system_message"
)

// Priority orders notifications for client presentation
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Payload carries the structured data attached to a notification. All fields
// are optional; which ones are set depends on the Type.
type Payload struct {
	RideID         *uuid.UUID `json:"ride_id,omitempty"`
	RequestID      *uuid.UUID `json:"request_id,omitempty"`
	DriverID       *uuid.UUID `json:"driver_id,omitempty"`
	DriverName     string     `json:"driver_name,omitempty"`
	PaymentID      string     `json:"payment_id,omitempty"`
	Amount         *float64   `json:"amount,omitempty"`
	FailureReason  string     `json:"failure_reason,omitempty"`
	ActionRequired bool       `json:"action_required,omitempty"`
}

// Notification is a durable per-user message, mutated only by read-marking.
type Notification struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Type      Type      `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Message   string    `json:"message" db:"message"`
	Payload   Payload   `json:"data" db:"-"`
	Priority  Priority  `json:"priority" db:"priority"`
	Read      bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PushToken is a device token registered for out-of-band delivery.
type PushToken struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Repository defines durable notification access. Hard deletion is
// intentionally absent.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}

// TokenRepository defines push token access
type TokenRepository interface {
	Register(ctx context.Context, t *PushToken) error
	Unregister(ctx context.Context, userID uuid.UUID, token string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*PushToken, error)
}
