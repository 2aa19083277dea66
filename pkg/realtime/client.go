package realtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Responder is invoked when a driver answers a pending ride offer over the
// connection, so the lifecycle layer can record the decision.
type Responder func(offer RideOffer, accepted bool)

// Client is one user's live connection.
type Client struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Name      string
	IsDriver  bool

	hub       *Hub
	conn      *websocket.Conn
	Send      chan []byte
	onRespond Responder
	logger    *logger.Logger
}

// NewClient wraps an upgraded connection for the hub
func NewClient(hub *Hub, conn *websocket.Conn, userID, companyID uuid.UUID, name string, isDriver bool, sendBuf int, onRespond Responder, log *logger.Logger) *Client {
	if sendBuf <= 0 {
		sendBuf = 256
	}
	return &Client{
		UserID:    userID,
		CompanyID: companyID,
		Name:      name,
		IsDriver:  isDriver,
		hub:       hub,
		conn:      conn,
		Send:      make(chan []byte, sendBuf),
		onRespond: onRespond,
		logger:    log,
	}
}

// ReadPump pumps messages from the connection into the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error",
					logger.Err(err),
					logger.String("user_id", c.UserID.String()),
				)
			}
			break
		}
		c.handleMessage(raw)
	}
}

// WritePump pumps messages from the hub to the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued messages into the same frame
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Warn("malformed client message",
			logger.Err(err),
			logger.String("user_id", c.UserID.String()),
		)
		return
	}

	switch msg.Type {
	case MessagePing:
		c.hub.SendToUser(c.UserID, NewMessage(MessagePong, nil))

	case MessageLocationUpdate:
		if msg.Location == nil {
			return
		}
		c.hub.UpdatePresence(c.UserID, msg.Location.Latitude, msg.Location.Longitude, msg.Location.IsAvailable)

	case MessageRideResponse:
		if msg.Response == nil || !c.IsDriver {
			return
		}
		offer, ok := c.hub.Respond(msg.Response.RideID, c.UserID, c.Name, msg.Response.Accepted)
		if ok && c.onRespond != nil {
			c.onRespond(offer, msg.Response.Accepted)
		}

	default:
		c.logger.Warn("unknown message type",
			logger.String("type", string(msg.Type)),
			logger.String("user_id", c.UserID.String()),
		)
	}
}
