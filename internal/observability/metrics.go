package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "ride_transitions_total", Help: "Ride lifecycle transitions by target status"},
		[]string{"status"},
	)
	SeatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "seat_requests_total", Help: "Seat request outcomes"},
		[]string{"outcome"},
	)
	MatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{Namespace: "rideshare", Name: "matches_returned", Help: "Candidates returned per match query", Buckets: []float64{0, 1, 2, 5, 10}},
	)
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{Namespace: "rideshare", Name: "connected_clients", Help: "Live realtime connections"},
	)
	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "payments_total", Help: "Simulated payment outcomes"},
		[]string{"status"},
	)
	LocationPingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "location_pings_total", Help: "Location pings appended to the ledger"},
	)
)
