package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// User is an employee or driver belonging to a company. Account management
// lives in an external service; this is the read model the core needs for
// role checks, matching and driver discovery.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	IsDriver  bool      `json:"is_driver" db:"is_driver"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	Latitude  *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64  `json:"longitude,omitempty" db:"longitude"`
	Rating    float64   `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Repository defines user read access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListDriversByCompany(ctx context.Context, companyID uuid.UUID) ([]*User, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error
}
