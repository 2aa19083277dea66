package lifecycle

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/payment"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/user"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/events"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/geo"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/errors"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/monitoring"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

// averageSpeedKMH drives the duration estimate attached at creation.
const averageSpeedKMH = 30.0

// FareQuoter prices a ride; satisfied by *payments.Simulator.
type FareQuoter interface {
	QuoteFare(distanceKM float64, durationMinutes int) float64
}

// Notifier persists and fans out a notification; satisfied by
// *notification.Service.
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

// OfferSender routes a seat request to the company's connected clients
// and holds it pending a driver's in-band response; satisfied by
// *realtime.Hub.
type OfferSender interface {
	OfferRide(offer realtime.RideOffer) int
}

// Service owns the ride lifecycle state machine. Every transition that
// touches status or seat count runs under a per-ride mutex so that
// concurrent drivers and passengers cannot oversell capacity.
type Service struct {
	rides     ride.Repository
	requests  ride.RequestRepository
	users     user.Repository
	processor payment.Processor
	fares     FareQuoter
	notifier  Notifier
	offers    OfferSender
	publisher events.Publisher
	nr        *monitoring.NewRelicApp
	log       *logger.Logger

	locks sync.Map // ride id -> *sync.Mutex
}

func NewService(
	rides ride.Repository,
	requests ride.RequestRepository,
	users user.Repository,
	processor payment.Processor,
	fares FareQuoter,
	notifier Notifier,
	offers OfferSender,
	publisher events.Publisher,
	nr *monitoring.NewRelicApp,
	log *logger.Logger,
) *Service {
	return &Service{
		rides:     rides,
		requests:  requests,
		users:     users,
		processor: processor,
		fares:     fares,
		notifier:  notifier,
		offers:    offers,
		publisher: publisher,
		nr:        nr,
		log:       log,
	}
}

// lockRide serializes all mutating operations on one ride. The returned
// func releases the lock.
func (s *Service) lockRide(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateInput carries driver-supplied ride fields.
type CreateInput struct {
	PickupLocation       string
	Destination          string
	PickupLatitude       float64
	PickupLongitude      float64
	DestinationLatitude  float64
	DestinationLongitude float64
	ScheduledTime        *time.Time
	VehicleCapacity      int
	Notes                string
}

// Create registers a new offered ride. Only drivers may offer rides;
// distance, estimated duration and an estimated fare are computed from
// the coordinates up front.
func (s *Service) Create(ctx context.Context, id auth.Identity, in CreateInput) (*ride.Ride, error) {
	if !id.IsDriver {
		return nil, errors.Forbidden("only drivers can offer rides", ride.ErrNotDriver)
	}
	if in.VehicleCapacity < 1 {
		return nil, errors.BadRequest("vehicle capacity must be at least 1", ride.ErrInvalidCapacity)
	}
	if !geo.ValidCoordinates(in.PickupLatitude, in.PickupLongitude) ||
		!geo.ValidCoordinates(in.DestinationLatitude, in.DestinationLongitude) {
		return nil, errors.BadRequest("coordinates are out of range", nil)
	}

	distance := geo.Distance(in.PickupLatitude, in.PickupLongitude, in.DestinationLatitude, in.DestinationLongitude)
	duration := geo.EstimatedDurationMinutes(distance, averageSpeedKMH)
	fare := s.fares.QuoteFare(distance, duration)

	now := time.Now().UTC()
	r := &ride.Ride{
		ID:                   uuid.New(),
		CompanyID:            id.CompanyID,
		DriverID:             id.UserID,
		PickupLocation:       in.PickupLocation,
		Destination:          in.Destination,
		PickupLatitude:       in.PickupLatitude,
		PickupLongitude:      in.PickupLongitude,
		DestinationLatitude:  in.DestinationLatitude,
		DestinationLongitude: in.DestinationLongitude,
		ScheduledTime:        in.ScheduledTime,
		VehicleCapacity:      in.VehicleCapacity,
		Status:               ride.StatusAvailable,
		Fare:                 &fare,
		DistanceKM:           distance,
		DurationMinutes:      &duration,
		PaymentStatus:        ride.PaymentPending,
		Notes:                in.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.rides.Create(ctx, r); err != nil {
		return nil, errors.Internal("could not create ride", err)
	}

	observability.RideTransitionsTotal.WithLabelValues(string(ride.StatusAvailable)).Inc()
	s.nr.RecordRideCreated(r.ID.String(), r.VehicleCapacity)
	s.publish(ctx, "ride.created", r, id.UserID)
	s.log.Info("ride created",
		logger.String("ride_id", r.ID.String()),
		logger.String("driver_id", r.DriverID.String()),
		logger.Int("capacity", r.VehicleCapacity),
	)
	return r, nil
}

// Get returns a ride visible to the caller. Rides outside the caller's
// company read as not found rather than forbidden.
func (s *Service) Get(ctx context.Context, id auth.Identity, rideID uuid.UUID) (*ride.Ride, error) {
	return s.getVisible(ctx, id, rideID)
}

// List returns the caller's company rides, optionally narrowed by status.
func (s *Service) List(ctx context.Context, id auth.Identity, filter ride.ListFilter) ([]*ride.Ride, error) {
	rides, err := s.rides.ListByCompany(ctx, id.CompanyID, filter)
	if err != nil {
		return nil, errors.Internal("could not list rides", err)
	}
	return rides, nil
}

// ListMine returns rides the caller drives plus rides they hold a seat
// request on, deduplicated.
func (s *Service) ListMine(ctx context.Context, id auth.Identity) ([]*ride.Ride, error) {
	seen := make(map[uuid.UUID]struct{})
	var out []*ride.Ride

	if id.IsDriver {
		driven, err := s.rides.ListByDriver(ctx, id.UserID)
		if err != nil {
			return nil, errors.Internal("could not list rides", err)
		}
		for _, r := range driven {
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}

	reqs, err := s.requests.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, errors.Internal("could not list ride requests", err)
	}
	for _, req := range reqs {
		if _, ok := seen[req.RideID]; ok {
			continue
		}
		r, err := s.rides.GetByID(ctx, req.RideID)
		if err != nil {
			if stderrors.Is(err, ride.ErrRideNotFound) {
				continue
			}
			return nil, errors.Internal("could not load ride", err)
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// UpdateInput patches non-lifecycle ride fields. Nil pointers leave the
// field untouched.
type UpdateInput struct {
	PickupLocation  *string
	Destination     *string
	ScheduledTime   *time.Time
	VehicleCapacity *int
	Notes           *string
}

// Update edits an offered ride. Only the driver may edit, and only
// while the ride is still available.
func (s *Service) Update(ctx context.Context, id auth.Identity, rideID uuid.UUID, in UpdateInput) (*ride.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can edit it", ride.ErrNotRideDriver)
	}
	if r.Status != ride.StatusAvailable {
		return nil, errors.InvalidState("ride can only be edited while available", ride.ErrNotAvailable)
	}

	if in.PickupLocation != nil {
		r.PickupLocation = *in.PickupLocation
	}
	if in.Destination != nil {
		r.Destination = *in.Destination
	}
	if in.ScheduledTime != nil {
		r.ScheduledTime = in.ScheduledTime
	}
	if in.VehicleCapacity != nil {
		if *in.VehicleCapacity < 1 {
			return nil, errors.BadRequest("vehicle capacity must be at least 1", ride.ErrInvalidCapacity)
		}
		r.VehicleCapacity = *in.VehicleCapacity
	}
	if in.Notes != nil {
		r.Notes = *in.Notes
	}
	r.UpdatedAt = time.Now().UTC()

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}
	return r, nil
}

// Delete removes an offered ride that never confirmed a passenger.
// Available rides have no confirmed seats, so no request cascade is
// needed beyond the repository's own cleanup.
func (s *Service) Delete(ctx context.Context, id auth.Identity, rideID uuid.UUID) error {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return err
	}
	if r.DriverID != id.UserID && !id.IsAdmin {
		return errors.Forbidden("only the ride's driver can delete it", ride.ErrNotRideDriver)
	}
	if r.Status != ride.StatusAvailable {
		return errors.InvalidState("ride can only be deleted while available", ride.ErrNotAvailable)
	}

	if err := s.rides.Delete(ctx, rideID); err != nil {
		return errors.Internal("could not delete ride", err)
	}
	s.log.Info("ride deleted", logger.String("ride_id", rideID.String()))
	return nil
}

// Drivers lists the caller's company drivers, for client-side driver
// discovery when the realtime hub has no presence for them.
func (s *Service) Drivers(ctx context.Context, id auth.Identity) ([]*user.User, error) {
	drivers, err := s.users.ListDriversByCompany(ctx, id.CompanyID)
	if err != nil {
		return nil, errors.Internal("could not list drivers", err)
	}
	return drivers, nil
}

// getVisible loads a ride and enforces company scoping.
func (s *Service) getVisible(ctx context.Context, id auth.Identity, rideID uuid.UUID) (*ride.Ride, error) {
	r, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRideNotFound) {
			return nil, errors.NotFound("ride not found", err)
		}
		return nil, errors.Internal("could not load ride", err)
	}
	if r.CompanyID != id.CompanyID {
		return nil, errors.NotFound("ride not found", ride.ErrRideNotFound)
	}
	return r, nil
}

// publish emits a lifecycle event; delivery failures are logged only.
func (s *Service) publish(ctx context.Context, eventType string, r *ride.Ride, actor uuid.UUID) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.Event{
		Type:      eventType,
		RideID:    r.ID,
		CompanyID: r.CompanyID,
		ActorID:   actor,
		At:        time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("event publish failed",
			logger.String("event", eventType),
			logger.String("ride_id", r.ID.String()),
			logger.Err(err),
		)
	}
}

// notify stores and delivers a notification; failures are logged only.
func (s *Service) notify(ctx context.Context, n *notification.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification failed",
			logger.String("user_id", n.UserID.String()),
			logger.String("type", string(n.Type)),
			logger.Err(err),
		)
	}
}
