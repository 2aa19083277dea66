package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/config"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

// stubRideRepo serves a fixed candidate set; only ListByCompany is used
// by the matcher.
type stubRideRepo struct {
	rides []*ride.Ride
}

func (s *stubRideRepo) Create(ctx context.Context, r *ride.Ride) error { return nil }
func (s *stubRideRepo) GetByID(ctx context.Context, id uuid.UUID) (*ride.Ride, error) {
	return nil, ride.ErrRideNotFound
}
func (s *stubRideRepo) Update(ctx context.Context, r *ride.Ride) error { return nil }
func (s *stubRideRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubRideRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*ride.Ride, error) {
	return nil, nil
}

func (s *stubRideRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, filter ride.ListFilter) ([]*ride.Ride, error) {
	var out []*ride.Ride
	for _, r := range s.rides {
		if r.CompanyID != companyID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

var matchingTestConfig = config.MatchingConfig{
	MaxDistanceKM: 5.0,
	MaxResults:    10,
	TimeWindow:    30 * time.Minute,
}

const (
	officeLat = 37.7749
	officeLon = -122.4194
	homeLat   = 37.6000
	homeLon   = -122.3800
)

func availableRide(companyID uuid.UUID, pickupLatOffset float64, capacity, confirmed int) *ride.Ride {
	return &ride.Ride{
		ID:                   uuid.New(),
		CompanyID:            companyID,
		DriverID:             uuid.New(),
		PickupLatitude:       officeLat + pickupLatOffset,
		PickupLongitude:      officeLon,
		DestinationLatitude:  homeLat,
		DestinationLongitude: homeLon,
		VehicleCapacity:      capacity,
		ConfirmedPassengers:  confirmed,
		Status:               ride.StatusAvailable,
	}
}

func defaultQuery(companyID uuid.UUID) Query {
	return Query{
		CompanyID:      companyID,
		UserID:         uuid.New(),
		PickupLat:      officeLat,
		PickupLon:      officeLon,
		DestinationLat: homeLat,
		DestinationLon: homeLon,
	}
}

func TestFindMatches_RanksByScore(t *testing.T) {
	companyID := uuid.New()
	exact := availableRide(companyID, 0, 4, 0)
	nearby := availableRide(companyID, 0.004, 4, 0) // pickup ~0.45km away
	repo := &stubRideRepo{rides: []*ride.Ride{nearby, exact}}

	matches, err := NewMatcher(repo, matchingTestConfig, logger.NewNop()).
		FindMatches(context.Background(), defaultQuery(companyID))

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, exact.ID, matches[0].Ride.ID)
	assert.Equal(t, nearby.ID, matches[1].Ride.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 0.001)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestFindMatches_ExcludesLowScores(t *testing.T) {
	companyID := uuid.New()
	// pickup ~2km off puts the pickup leg at score zero; with a perfect
	// destination the average sits at the 0.5 cutoff and is excluded
	marginal := availableRide(companyID, 0.018, 4, 0)
	repo := &stubRideRepo{rides: []*ride.Ride{marginal}}

	matches, err := NewMatcher(repo, matchingTestConfig, logger.NewNop()).
		FindMatches(context.Background(), defaultQuery(companyID))

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatches_ExcludesDistantPickups(t *testing.T) {
	companyID := uuid.New()
	farAway := availableRide(companyID, 0.06, 4, 0) // ~6.7km pickup leg
	repo := &stubRideRepo{rides: []*ride.Ride{farAway}}

	matches, err := NewMatcher(repo, matchingTestConfig, logger.NewNop()).
		FindMatches(context.Background(), defaultQuery(companyID))

	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatches_ExcludesOwnAndFullRides(t *testing.T) {
	companyID := uuid.New()
	q := defaultQuery(companyID)

	own := availableRide(companyID, 0, 4, 0)
	own.DriverID = q.UserID
	full := availableRide(companyID, 0, 2, 2)
	open := availableRide(companyID, 0, 2, 1)
	repo := &stubRideRepo{rides: []*ride.Ride{own, full, open}}

	matches, err := NewMatcher(repo, matchingTestConfig, logger.NewNop()).
		FindMatches(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, open.ID, matches[0].Ride.ID)
}

func TestFindMatches_TimeWindow(t *testing.T) {
	companyID := uuid.New()
	now := time.Now()

	soon := availableRide(companyID, 0, 4, 0)
	soonAt := now.Add(20 * time.Minute)
	soon.ScheduledTime = &soonAt

	late := availableRide(companyID, 0, 4, 0)
	lateAt := now.Add(2 * time.Hour)
	late.ScheduledTime = &lateAt

	unscheduled := availableRide(companyID, 0, 4, 0)

	repo := &stubRideRepo{rides: []*ride.Ride{soon, late, unscheduled}}
	q := defaultQuery(companyID)
	q.DepartureTime = now

	matches, err := NewMatcher(repo, matchingTestConfig, logger.NewNop()).
		FindMatches(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	ids := []uuid.UUID{matches[0].Ride.ID, matches[1].Ride.ID}
	assert.Contains(t, ids, soon.ID)
	assert.Contains(t, ids, unscheduled.ID)
}

func TestFindMatches_TruncatesResults(t *testing.T) {
	companyID := uuid.New()
	repo := &stubRideRepo{}
	for i := 0; i < 15; i++ {
		repo.rides = append(repo.rides, availableRide(companyID, 0, 4, 0))
	}

	matches, err := NewMatcher(repo, matchingTestConfig, logger.NewNop()).
		FindMatches(context.Background(), defaultQuery(companyID))

	require.NoError(t, err)
	assert.Len(t, matches, matchingTestConfig.MaxResults)
}
