package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/dto"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/tracking"
)

// ReportLocation handles POST /api/v1/rides/:id/locations
func (h *Handlers) ReportLocation(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.LocationPingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	ping, err := h.Tracker.Append(c.Request.Context(), id, rideID, tracking.PingInput{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Speed:     req.Speed,
		Heading:   req.Heading,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ping)
}

// ListLocations handles GET /api/v1/rides/:id/locations
func (h *Handlers) ListLocations(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	pings, err := h.Tracker.Recent(c.Request.Context(), id, rideID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": pings, "count": len(pings)})
}
