package realtime

import (
	"time"

	"github.com/google/uuid"
)

// MessageType is the closed set of messages exchanged over a live connection.
type MessageType string

const (
	MessageConnection     MessageType = "connection"
	MessageNotification   MessageType = "notification"
	MessageRideUpdate     MessageType = "ride_update"
	MessageRideRequest    MessageType = "ride_request"
	MessageRideResponse   MessageType = "ride_response"
	MessageLocationUpdate MessageType = "location_update"
	MessagePing           MessageType = "ping"
	MessagePong           MessageType = "pong"
)

// Message is the envelope written to clients.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage stamps an envelope with the current time
func NewMessage(t MessageType, data interface{}) Message {
	return Message{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// RideOffer is a seat request routed to drivers, held until one responds.
// RequestID identifies the durable seat request the decision resolves.
type RideOffer struct {
	RideID         uuid.UUID `json:"ride_id"`
	RequestID      uuid.UUID `json:"request_id"`
	RequesterID    uuid.UUID `json:"requester_id"`
	RequesterName  string    `json:"requester_name,omitempty"`
	CompanyID      uuid.UUID `json:"company_id"`
	PickupLocation string    `json:"pickup_location"`
	Destination    string    `json:"destination"`
	Note           string    `json:"note,omitempty"`
}

// RideResponse is a driver's answer to a pending offer.
type RideResponse struct {
	RideID   uuid.UUID `json:"ride_id"`
	Accepted bool      `json:"accepted"`
}

// RideDecision pairs the resolved offer with the deciding driver; it is sent
// to both the requester and the driver.
type RideDecision struct {
	RideID     uuid.UUID `json:"ride_id"`
	Accepted   bool      `json:"accepted"`
	DriverID   uuid.UUID `json:"driver_id"`
	DriverName string    `json:"driver_name,omitempty"`
}

// LocationReport is a client's presence update.
type LocationReport struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	IsAvailable bool    `json:"is_available"`
}

// ClientMessage is a message read from a client connection.
type ClientMessage struct {
	Type     MessageType     `json:"type"`
	Location *LocationReport `json:"location,omitempty"`
	Response *RideResponse   `json:"response,omitempty"`
}
