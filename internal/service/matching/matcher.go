package matching

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/config"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/geo"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

// proximityScaleKM is the distance at which a leg's proximity score
// reaches zero. Half a kilometre off route scores 0.75.
const proximityScaleKM = 2.0

// minScore is the compatibility cutoff below which a ride is not
// worth offering.
const minScore = 0.5

// Query describes the trip an employee wants to join.
type Query struct {
	CompanyID      uuid.UUID
	UserID         uuid.UUID
	PickupLat      float64
	PickupLon      float64
	DestinationLat float64
	DestinationLon float64
	DepartureTime  time.Time
}

// Match pairs a candidate ride with how well it fits the query.
type Match struct {
	Ride             *ride.Ride `json:"ride"`
	Score            float64    `json:"compatibility_score"`
	PickupDistanceKM float64    `json:"pickup_distance_km"`
	DetourKM         float64    `json:"destination_distance_km"`
}

// Matcher ranks available rides by route compatibility.
type Matcher struct {
	rides ride.Repository
	cfg   config.MatchingConfig
	log   *logger.Logger
}

func NewMatcher(rides ride.Repository, cfg config.MatchingConfig, log *logger.Logger) *Matcher {
	return &Matcher{rides: rides, cfg: cfg, log: log}
}

// FindMatches returns the best-scoring available rides in the query's
// company, best first. Rides the querying user drives, full rides, and
// rides departing outside the configured window are skipped.
func (m *Matcher) FindMatches(ctx context.Context, q Query) ([]Match, error) {
	available := ride.StatusAvailable
	candidates, err := m.rides.ListByCompany(ctx, q.CompanyID, ride.ListFilter{Status: &available})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(candidates))
	for _, r := range candidates {
		if r.DriverID == q.UserID || !r.HasCapacity() {
			continue
		}
		if !m.withinWindow(q.DepartureTime, r.ScheduledTime) {
			continue
		}

		pickupDist := geo.Distance(q.PickupLat, q.PickupLon, r.PickupLatitude, r.PickupLongitude)
		if pickupDist > m.cfg.MaxDistanceKM {
			continue
		}
		destDist := geo.Distance(q.DestinationLat, q.DestinationLon, r.DestinationLatitude, r.DestinationLongitude)

		score := (proximityScore(pickupDist) + proximityScore(destDist)) / 2
		if score <= minScore {
			continue
		}

		matches = append(matches, Match{
			Ride:             r,
			Score:            score,
			PickupDistanceKM: pickupDist,
			DetourKM:         destDist,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].PickupDistanceKM < matches[j].PickupDistanceKM
	})
	if len(matches) > m.cfg.MaxResults {
		matches = matches[:m.cfg.MaxResults]
	}

	observability.MatchesReturned.Observe(float64(len(matches)))
	m.log.Debug("ride matching completed",
		logger.String("company_id", q.CompanyID.String()),
		logger.Int("candidates", len(candidates)),
		logger.Int("matches", len(matches)),
	)
	return matches, nil
}

// withinWindow reports whether the ride's departure is close enough to
// the requested one. A zero requested time matches everything, as does
// a ride with no schedule.
func (m *Matcher) withinWindow(requested time.Time, scheduled *time.Time) bool {
	if requested.IsZero() || scheduled == nil {
		return true
	}
	diff := scheduled.Sub(requested)
	if diff < 0 {
		diff = -diff
	}
	return diff <= m.cfg.TimeWindow
}

// proximityScore maps a leg distance to [0,1], linearly dropping to
// zero at proximityScaleKM.
func proximityScore(distKM float64) float64 {
	s := 1 - distKM/proximityScaleKM
	if s < 0 {
		return 0
	}
	return s
}
