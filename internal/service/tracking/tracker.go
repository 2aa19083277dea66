package tracking

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/location"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/user"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/geo"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/cache"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/errors"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

const defaultRecentLimit = 100

// Tracker appends to and reads a ride's location ledger. The ledger is
// the source of truth; the Redis geo set only mirrors last-known driver
// positions for radius queries.
type Tracker struct {
	pings    location.Repository
	rides    ride.Repository
	requests ride.RequestRepository
	users    user.Repository
	redis    *redis.Client
	log      *logger.Logger
}

func NewTracker(pings location.Repository, rides ride.Repository, requests ride.RequestRepository, users user.Repository, rdb *redis.Client, log *logger.Logger) *Tracker {
	return &Tracker{pings: pings, rides: rides, requests: requests, users: users, redis: rdb, log: log}
}

// PingInput carries a client position report.
type PingInput struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Speed     *float64
	Heading   *float64
}

// Append records a position in the ride's ledger. Only the ride's
// driver or a seated passenger may report; the timestamp is assigned
// server-side. The Redis mirror and user position update are best
// effort.
func (t *Tracker) Append(ctx context.Context, id auth.Identity, rideID uuid.UUID, in PingInput) (*location.Ping, error) {
	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		return nil, errors.BadRequest("coordinates are out of range", nil)
	}

	r, err := t.rides.GetByID(ctx, rideID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRideNotFound) {
			return nil, errors.NotFound("ride not found", err)
		}
		return nil, errors.Internal("could not load ride", err)
	}
	if r.CompanyID != id.CompanyID {
		return nil, errors.NotFound("ride not found", ride.ErrRideNotFound)
	}
	if r.Status.IsTerminal() {
		return nil, errors.InvalidState("finished rides do not accept location reports", ride.ErrTerminalState)
	}

	isDriver := r.DriverID == id.UserID
	if !isDriver {
		req, err := t.requests.GetByRideAndUser(ctx, rideID, id.UserID)
		if err != nil || req.Status != ride.RequestAccepted {
			return nil, errors.Forbidden("only the driver or a seated passenger can report location", ride.ErrNotPassenger)
		}
	}

	p := &location.Ping{
		ID:        uuid.New(),
		RideID:    rideID,
		UserID:    id.UserID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Accuracy:  in.Accuracy,
		Speed:     in.Speed,
		Heading:   in.Heading,
		IsDriver:  isDriver,
		Timestamp: time.Now().UTC(),
	}
	if err := t.pings.Append(ctx, p); err != nil {
		return nil, errors.Internal("could not record location", err)
	}
	observability.LocationPingsTotal.Inc()

	if isDriver {
		t.mirrorDriver(ctx, id.UserID, in.Latitude, in.Longitude)
	}
	return p, nil
}

// Recent returns the newest pings for a ride, newest first.
func (t *Tracker) Recent(ctx context.Context, id auth.Identity, rideID uuid.UUID, limit int) ([]*location.Ping, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultRecentLimit
	}

	r, err := t.rides.GetByID(ctx, rideID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRideNotFound) {
			return nil, errors.NotFound("ride not found", err)
		}
		return nil, errors.Internal("could not load ride", err)
	}
	if r.CompanyID != id.CompanyID {
		return nil, errors.NotFound("ride not found", ride.ErrRideNotFound)
	}

	pings, err := t.pings.RecentByRide(ctx, rideID, limit)
	if err != nil {
		return nil, errors.Internal("could not load locations", err)
	}
	return pings, nil
}

// mirrorDriver pushes the driver's last position to Redis and the user
// read model. Neither failure surfaces to the caller.
func (t *Tracker) mirrorDriver(ctx context.Context, driverID uuid.UUID, lat, lon float64) {
	if t.redis != nil {
		if err := cache.UpsertDriverLocation(ctx, t.redis, driverID.String(), lat, lon); err != nil {
			t.log.Warn("driver geo mirror failed",
				logger.String("driver_id", driverID.String()),
				logger.Err(err),
			)
		}
	}
	if t.users != nil {
		if err := t.users.UpdateLocation(ctx, driverID, lat, lon); err != nil {
			t.log.Warn("driver position update failed",
				logger.String("driver_id", driverID.String()),
				logger.Err(err),
			)
		}
	}
}
