package realtime

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/geo"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

// Presence is a connected user's cached last-known state.
type Presence struct {
	UserID      uuid.UUID `json:"user_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IsDriver    bool      `json:"is_driver"`
	IsAvailable bool      `json:"is_available"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NearbyDriver is a presence entry annotated with distance from a search center.
type NearbyDriver struct {
	Presence
	DistanceKM float64 `json:"distance_km"`
}

// Hub tracks live client connections per user, routes point-to-point and
// company-broadcast messages, and buffers ride offers awaiting a driver
// response. Delivery is at-most-once: a failed or slow send disconnects the
// recipient rather than blocking or retrying.
type Hub struct {
	mu       sync.Mutex
	conns    map[uuid.UUID]*Client
	presence map[uuid.UUID]Presence
	company  map[uuid.UUID]map[uuid.UUID]struct{}
	pending  map[uuid.UUID]RideOffer
	logger   *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		conns:    make(map[uuid.UUID]*Client),
		presence: make(map[uuid.UUID]Presence),
		company:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		pending:  make(map[uuid.UUID]RideOffer),
		logger:   log,
	}
}

// Register attaches a client connection. An existing connection for the same
// user is replaced and its send channel closed.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if old, ok := h.conns[c.UserID]; ok {
		close(old.Send)
		// the stale client's Unregister is a no-op, so account for it here
		observability.ConnectedClients.Dec()
	}
	h.conns[c.UserID] = c
	h.presence[c.UserID] = Presence{
		UserID:    c.UserID,
		CompanyID: c.CompanyID,
		IsDriver:  c.IsDriver,
		UpdatedAt: time.Now().UTC(),
	}
	members, ok := h.company[c.CompanyID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.company[c.CompanyID] = members
	}
	members[c.UserID] = struct{}{}
	h.mu.Unlock()

	observability.ConnectedClients.Inc()
	h.logger.Info("client connected",
		logger.String("user_id", c.UserID.String()),
		logger.Bool("is_driver", c.IsDriver),
	)

	h.SendToUser(c.UserID, NewMessage(MessageConnection, map[string]string{"message": "connected"}))
}

// Unregister detaches a client and forgets its cached presence. A stale
// client (already replaced by a newer connection) is ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	current, ok := h.conns[c.UserID]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}
	h.dropLocked(c.UserID)
	h.mu.Unlock()

	observability.ConnectedClients.Dec()
	h.logger.Info("client disconnected", logger.String("user_id", c.UserID.String()))
}

// dropLocked removes a user's connection and presence. Callers hold h.mu.
func (h *Hub) dropLocked(userID uuid.UUID) {
	if c, ok := h.conns[userID]; ok {
		close(c.Send)
		delete(h.conns, userID)
	}
	if p, ok := h.presence[userID]; ok {
		if members, ok := h.company[p.CompanyID]; ok {
			delete(members, userID)
			if len(members) == 0 {
				delete(h.company, p.CompanyID)
			}
		}
		delete(h.presence, userID)
	}
}

// SendToUser delivers a message to a user's connection if present. Sending to
// a disconnected user is a no-op. A full send buffer counts as a delivery
// failure: the connection is dropped immediately, no retry. Reports whether
// the message was handed to the connection.
func (h *Hub) SendToUser(userID uuid.UUID, msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", logger.Err(err))
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sendLocked(userID, data)
}

func (h *Hub) sendLocked(userID uuid.UUID, data []byte) bool {
	c, ok := h.conns[userID]
	if !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		h.logger.Warn("send buffer full, dropping connection",
			logger.String("user_id", userID.String()),
		)
		h.dropLocked(userID)
		observability.ConnectedClients.Dec()
		return false
	}
}

// BroadcastToCompany delivers a message to every connected user of a company,
// optionally excluding one (typically the sender). Returns the number of
// connections the message was handed to.
func (h *Hub) BroadcastToCompany(companyID uuid.UUID, msg Message, exclude uuid.UUID) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast", logger.Err(err))
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.company[companyID]
	ids := make([]uuid.UUID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}

	sent := 0
	for _, id := range ids {
		if id == exclude {
			continue
		}
		if h.sendLocked(id, data) {
			sent++
		}
	}
	return sent
}

// UpdatePresence refreshes a connected user's cached location and
// availability. Unknown users are ignored; presence exists only while the
// connection does.
func (h *Hub) UpdatePresence(userID uuid.UUID, lat, lon float64, available bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.presence[userID]
	if !ok {
		return
	}
	p.Latitude = lat
	p.Longitude = lon
	p.IsAvailable = available
	p.UpdatedAt = time.Now().UTC()
	h.presence[userID] = p
}

// FindNearbyDrivers scans cached presence for available drivers of a company
// within radiusKM of a point, sorted by distance ascending.
func (h *Hub) FindNearbyDrivers(companyID uuid.UUID, lat, lon, radiusKM float64) []NearbyDriver {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []NearbyDriver
	for _, p := range h.presence {
		if p.CompanyID != companyID || !p.IsDriver || !p.IsAvailable {
			continue
		}
		d := geo.Distance(lat, lon, p.Latitude, p.Longitude)
		if d <= radiusKM {
			out = append(out, NearbyDriver{Presence: p, DistanceKM: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKM < out[j].DistanceKM })
	return out
}

// OfferRide stores a seat request keyed by ride id and broadcasts it to the
// company's other connected users. The offer stays pending until a driver
// responds or the entry is taken.
func (h *Hub) OfferRide(offer RideOffer) int {
	h.mu.Lock()
	h.pending[offer.RideID] = offer
	h.mu.Unlock()

	return h.BroadcastToCompany(offer.CompanyID, NewMessage(MessageRideRequest, offer), offer.RequesterID)
}

// TakeOffer looks up and removes the pending offer for a ride.
func (h *Hub) TakeOffer(rideID uuid.UUID) (RideOffer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	offer, ok := h.pending[rideID]
	if ok {
		delete(h.pending, rideID)
	}
	return offer, ok
}

// Respond resolves a pending offer with a driver's decision, notifying the
// original requester and the driver with paired messages. A decline leaves
// re-broadcasting to the requester; there is no automatic re-offer. Returns
// the resolved offer, and whether a pending one existed.
func (h *Hub) Respond(rideID uuid.UUID, driverID uuid.UUID, driverName string, accepted bool) (RideOffer, bool) {
	offer, ok := h.TakeOffer(rideID)
	if !ok {
		return RideOffer{}, false
	}

	decision := RideDecision{
		RideID:     rideID,
		Accepted:   accepted,
		DriverID:   driverID,
		DriverName: driverName,
	}
	h.SendToUser(offer.RequesterID, NewMessage(MessageRideResponse, decision))
	h.SendToUser(driverID, NewMessage(MessageRideResponse, decision))
	return offer, true
}

// IsConnected reports whether a user has a live connection
func (h *Hub) IsConnected(userID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.conns[userID]
	return ok
}

// ActiveConnections returns the number of live connections
func (h *Hub) ActiveConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
