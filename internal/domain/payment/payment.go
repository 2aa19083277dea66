package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNotRefundable   = errors.New("payment is not refundable")
)

// Status of a payment record
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Method is the closed set of supported payment methods
type Method string

const (
	MethodCorporateAccount Method = "corporate_account"
	MethodCreditCard       Method = "credit_card"
	MethodDigitalWallet    Method = "digital_wallet"
)

// Payment records one settlement attempt for a ride.
type Payment struct {
	ID            uuid.UUID `json:"payment_id"`
	RideID        uuid.UUID `json:"ride_id"`
	UserID        uuid.UUID `json:"user_id"`
	CompanyID     uuid.UUID `json:"company_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Method        Method    `json:"payment_method"`
	Status        Status    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	Description   string    `json:"description,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	RefundID      *uuid.UUID `json:"refund_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Refund records a refund issued against a completed payment.
type Refund struct {
	ID        uuid.UUID `json:"refund_id"`
	PaymentID uuid.UUID `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	UserID    uuid.UUID `json:"user_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanySummary aggregates settled payments for a company.
type CompanySummary struct {
	CompanyID     uuid.UUID `json:"company_id"`
	TotalAmount   float64   `json:"total_amount"`
	TotalPayments int       `json:"total_payments"`
	TotalRefunds  int       `json:"total_refunds"`
	Currency      string    `json:"currency"`
}

// Charge describes a payment to process.
type Charge struct {
	RideID      uuid.UUID
	UserID      uuid.UUID
	CompanyID   uuid.UUID
	Amount      float64
	Method      Method
	Description string
}

// Processor is the boundary the ride lifecycle talks to. The in-repo
// implementation is a simulator; a real gateway client can replace it
// without touching lifecycle code.
type Processor interface {
	Process(ctx context.Context, c Charge) (*Payment, error)
	Refund(ctx context.Context, paymentID uuid.UUID, amount float64, reason string, userID uuid.UUID) (*Payment, error)
	Get(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*Payment, error)
	Summary(ctx context.Context, companyID uuid.UUID) (*CompanySummary, error)
}
