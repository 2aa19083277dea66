package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/config"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/payment"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

// Simulator is an in-memory payment.Processor. It settles charges
// instantly with a configurable success rate and keeps all records in
// process memory; restarting the service forgets payment history.
type Simulator struct {
	cfg  config.FareConfig
	log  *logger.Logger
	rng  func() float64
	mu   sync.RWMutex
	byID map[uuid.UUID]*payment.Payment
	// insertion order, so listings come back newest first without sorting
	order   []uuid.UUID
	refunds map[uuid.UUID]*payment.Refund
}

// NewSimulator builds a Simulator seeded from the process clock.
func NewSimulator(cfg config.FareConfig, log *logger.Logger) *Simulator {
	src := mrand.New(mrand.NewSource(time.Now().UnixNano()))
	return newSimulator(cfg, log, src.Float64)
}

// newSimulator lets tests pin the random source.
func newSimulator(cfg config.FareConfig, log *logger.Logger, rng func() float64) *Simulator {
	return &Simulator{
		cfg:     cfg,
		log:     log,
		rng:     rng,
		byID:    make(map[uuid.UUID]*payment.Payment),
		refunds: make(map[uuid.UUID]*payment.Refund),
	}
}

// QuoteFare prices a ride from its distance and duration, rounded to
// two decimal places.
func (s *Simulator) QuoteFare(distanceKM float64, durationMinutes int) float64 {
	fare := s.cfg.BaseRate + s.cfg.DistanceRate*distanceKM + s.cfg.TimeRate*float64(durationMinutes)
	return math.Round(fare*100) / 100
}

// Process settles a charge. Failures are reported in the returned
// record, not as an error; an error means the charge itself was invalid.
func (s *Simulator) Process(ctx context.Context, c payment.Charge) (*payment.Payment, error) {
	if c.Amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %.2f", c.Amount)
	}
	method := c.Method
	if method == "" {
		method = payment.MethodCorporateAccount
	}

	now := time.Now().UTC()
	p := &payment.Payment{
		ID:          uuid.New(),
		RideID:      c.RideID,
		UserID:      c.UserID,
		CompanyID:   c.CompanyID,
		Amount:      math.Round(c.Amount*100) / 100,
		Currency:    s.cfg.Currency,
		Method:      method,
		Description: c.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.rng() < s.cfg.SuccessRate {
		p.Status = payment.StatusCompleted
		p.TransactionID = newTransactionID()
	} else {
		p.Status = payment.StatusFailed
		p.FailureReason = "payment declined by simulated gateway"
	}

	s.mu.Lock()
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	s.mu.Unlock()

	observability.PaymentsTotal.WithLabelValues(string(p.Status)).Inc()
	s.log.Info("payment processed",
		logger.String("payment_id", p.ID.String()),
		logger.String("ride_id", p.RideID.String()),
		logger.Float64("amount", p.Amount),
		logger.String("status", string(p.Status)),
	)
	return clone(p), nil
}

// Refund reverses a completed payment. Partial refunds are allowed up
// to the charged amount; amount <= 0 refunds the full charge.
func (s *Simulator) Refund(ctx context.Context, paymentID uuid.UUID, amount float64, reason string, userID uuid.UUID) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[paymentID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	if p.Status != payment.StatusCompleted {
		return nil, payment.ErrNotRefundable
	}
	if amount <= 0 || amount > p.Amount {
		amount = p.Amount
	}

	r := &payment.Refund{
		ID:        uuid.New(),
		PaymentID: p.ID,
		Amount:    math.Round(amount*100) / 100,
		Reason:    reason,
		UserID:    userID,
		Status:    payment.StatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	s.refunds[r.ID] = r

	p.Status = payment.StatusRefunded
	p.RefundID = &r.ID
	p.UpdatedAt = r.CreatedAt

	observability.PaymentsTotal.WithLabelValues(string(payment.StatusRefunded)).Inc()
	s.log.Info("payment refunded",
		logger.String("payment_id", p.ID.String()),
		logger.String("refund_id", r.ID.String()),
		logger.Float64("amount", r.Amount),
	)
	return clone(p), nil
}

func (s *Simulator) Get(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[paymentID]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return clone(p), nil
}

func (s *Simulator) ListByUser(ctx context.Context, userID uuid.UUID) ([]*payment.Payment, error) {
	return s.list(func(p *payment.Payment) bool { return p.UserID == userID }), nil
}

func (s *Simulator) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*payment.Payment, error) {
	return s.list(func(p *payment.Payment) bool { return p.CompanyID == companyID }), nil
}

// Summary totals completed payments for a company. Refunded payments
// count toward TotalRefunds and are excluded from TotalAmount.
func (s *Simulator) Summary(ctx context.Context, companyID uuid.UUID) (*payment.CompanySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &payment.CompanySummary{CompanyID: companyID, Currency: s.cfg.Currency}
	for _, id := range s.order {
		p := s.byID[id]
		if p.CompanyID != companyID {
			continue
		}
		switch p.Status {
		case payment.StatusCompleted:
			out.TotalAmount += p.Amount
			out.TotalPayments++
		case payment.StatusRefunded:
			out.TotalPayments++
			out.TotalRefunds++
		}
	}
	out.TotalAmount = math.Round(out.TotalAmount*100) / 100
	return out, nil
}

func (s *Simulator) list(keep func(*payment.Payment) bool) []*payment.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*payment.Payment, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		if p := s.byID[s.order[i]]; keep(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func clone(p *payment.Payment) *payment.Payment {
	cp := *p
	if p.RefundID != nil {
		id := *p.RefundID
		cp.RefundID = &id
	}
	return &cp
}

func newTransactionID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// math/rand fallback keeps ids flowing if the OS source fails
		mrand.Read(buf)
	}
	return "TXN_" + strings.ToUpper(hex.EncodeToString(buf))
}
