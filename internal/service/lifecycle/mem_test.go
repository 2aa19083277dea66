package lifecycle

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/user"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

// memRideRepo mimics a database: reads hand back copies so concurrent
// callers only observe each other through Update.
type memRideRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]ride.Ride
}

func newMemRideRepo() *memRideRepo {
	return &memRideRepo{rides: make(map[uuid.UUID]ride.Ride)}
}

func (m *memRideRepo) Create(ctx context.Context, r *ride.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID] = *r
	return nil
}

func (m *memRideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ride.ErrRideNotFound
	}
	cp := r
	return &cp, nil
}

func (m *memRideRepo) Update(ctx context.Context, r *ride.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[r.ID]; !ok {
		return ride.ErrRideNotFound
	}
	m.rides[r.ID] = *r
	return nil
}

func (m *memRideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return ride.ErrRideNotFound
	}
	delete(m.rides, id)
	return nil
}

func (m *memRideRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, filter ride.ListFilter) ([]*ride.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ride.Ride
	for _, r := range m.rides {
		if r.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		cp := r
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memRideRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ride.Ride
	for _, r := range m.rides {
		if r.DriverID == driverID {
			cp := r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]ride.Request
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[uuid.UUID]ride.Request)}
}

func (m *memRequestRepo) Create(ctx context.Context, req *ride.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = *req
	return nil
}

func (m *memRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, ride.ErrRequestNotFound
	}
	cp := req
	return &cp, nil
}

func (m *memRequestRepo) GetByRideAndUser(ctx context.Context, rideID, userID uuid.UUID) (*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.RideID == rideID && req.UserID == userID {
			cp := req
			return &cp, nil
		}
	}
	return nil, ride.ErrRequestNotFound
}

func (m *memRequestRepo) Update(ctx context.Context, req *ride.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; !ok {
		return ride.ErrRequestNotFound
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *memRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return ride.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *memRequestRepo) ListByRide(ctx context.Context, rideID uuid.UUID) ([]*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ride.Request
	for _, req := range m.requests {
		if req.RideID == rideID {
			cp := req
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequestRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ride.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ride.Request
	for _, req := range m.requests {
		if req.UserID == userID {
			cp := req
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (m *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := u
	return &cp, nil
}

func (m *memUserRepo) ListDriversByCompany(ctx context.Context, companyID uuid.UUID) ([]*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*user.User
	for _, u := range m.users {
		if u.CompanyID == companyID && u.IsDriver {
			cp := u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUserRepo) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Latitude = &lat
	u.Longitude = &lon
	m.users[id] = u
	return nil
}

// recordingNotifier captures fan-out without delivery.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) byType(typ notification.Type) []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// recordingOfferSender captures hub offers without routing them.
type recordingOfferSender struct {
	mu     sync.Mutex
	offers []realtime.RideOffer
}

func (r *recordingOfferSender) OfferRide(offer realtime.RideOffer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offers = append(r.offers, offer)
	return 0
}

func (r *recordingOfferSender) all() []realtime.RideOffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.RideOffer(nil), r.offers...)
}
