package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

// HandleWebSocket upgrades GET /ws to a realtime connection. Browsers cannot
// set headers on the websocket handshake, so the token is accepted from the
// query string as well as the Authorization header.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "missing token"})
		return
	}

	id, err := h.Verifier.Verify(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "could not validate credentials"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  h.HubConfig.ReadBufferSize,
		WriteBufferSize: h.HubConfig.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			// Origin policy is enforced by the CORS layer in front of us.
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("websocket upgrade failed",
			logger.Err(err),
			logger.String("user_id", id.UserID.String()),
		)
		return
	}

	// A driver's in-band answer to a pending offer resolves the durable
	// seat request through the lifecycle service.
	responder := func(offer realtime.RideOffer, accepted bool) {
		ctx := context.Background()
		var err error
		if accepted {
			_, err = h.Lifecycle.Accept(ctx, id, offer.RequestID)
		} else {
			_, err = h.Lifecycle.Reject(ctx, id, offer.RequestID)
		}
		if err != nil {
			h.Logger.Warn("ride offer response failed",
				logger.String("ride_id", offer.RideID.String()),
				logger.String("request_id", offer.RequestID.String()),
				logger.Bool("accepted", accepted),
				logger.Err(err),
			)
		}
	}

	client := realtime.NewClient(h.Hub, conn, id.UserID, id.CompanyID, id.Name, id.IsDriver, h.HubConfig.SendBufferSize, responder, h.Logger)
	h.Hub.Register(client)

	h.Logger.Info("websocket connected",
		logger.String("user_id", id.UserID.String()),
		logger.String("company_id", id.CompanyID.String()),
		logger.Bool("is_driver", id.IsDriver),
	)

	go client.WritePump()
	go client.ReadPump()
}
