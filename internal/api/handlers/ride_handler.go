package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/dto"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/lifecycle"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/matching"
)

// CreateRide handles POST /api/v1/rides
func (h *Handlers) CreateRide(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	r, err := h.Lifecycle.Create(c.Request.Context(), id, lifecycle.CreateInput{
		PickupLocation:       req.PickupLocation,
		Destination:          req.Destination,
		PickupLatitude:       req.PickupLatitude,
		PickupLongitude:      req.PickupLongitude,
		DestinationLatitude:  req.DestinationLatitude,
		DestinationLongitude: req.DestinationLongitude,
		ScheduledTime:        req.ScheduledTime,
		VehicleCapacity:      req.VehicleCapacity,
		Notes:                req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetRide handles GET /api/v1/rides/:id
func (h *Handlers) GetRide(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.Lifecycle.Get(c.Request.Context(), id, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListRides handles GET /api/v1/rides
func (h *Handlers) ListRides(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	filter := ride.ListFilter{}
	if raw := c.Query("status"); raw != "" {
		status := ride.Status(raw)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid status filter"})
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	rides, err := h.Lifecycle.List(c.Request.Context(), id, filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides, "count": len(rides)})
}

// ListMyRides handles GET /api/v1/rides/mine
func (h *Handlers) ListMyRides(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	rides, err := h.Lifecycle.ListMine(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides, "count": len(rides)})
}

// UpdateRide handles PUT /api/v1/rides/:id
func (h *Handlers) UpdateRide(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	r, err := h.Lifecycle.Update(c.Request.Context(), id, rideID, lifecycle.UpdateInput{
		PickupLocation:  req.PickupLocation,
		Destination:     req.Destination,
		ScheduledTime:   req.ScheduledTime,
		VehicleCapacity: req.VehicleCapacity,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRide handles DELETE /api/v1/rides/:id
func (h *Handlers) DeleteRide(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Lifecycle.Delete(c.Request.Context(), id, rideID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FindMatches handles GET /api/v1/rides/matches
func (h *Handlers) FindMatches(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var q dto.MatchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid query parameters", "details": err.Error()})
		return
	}

	query := matching.Query{
		CompanyID:      id.CompanyID,
		UserID:         id.UserID,
		PickupLat:      q.PickupLatitude,
		PickupLon:      q.PickupLongitude,
		DestinationLat: q.DestinationLatitude,
		DestinationLon: q.DestinationLongitude,
	}
	if q.DepartureTime != nil {
		query.DepartureTime = *q.DepartureTime
	}

	matches, err := h.Matcher.FindMatches(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// StartRide handles POST /api/v1/rides/:id/start
func (h *Handlers) StartRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.Start)
}

// PickupPassengers handles POST /api/v1/rides/:id/pickup
func (h *Handlers) PickupPassengers(c *gin.Context) {
	h.transition(c, h.Lifecycle.Pickup)
}

// CompleteRide handles POST /api/v1/rides/:id/complete
func (h *Handlers) CompleteRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.Complete)
}

// CancelRide handles POST /api/v1/rides/:id/cancel
func (h *Handlers) CancelRide(c *gin.Context) {
	h.transition(c, h.Lifecycle.CancelRide)
}

// transition factors the shared shape of the argument-free lifecycle
// endpoints.
func (h *Handlers) transition(c *gin.Context, op func(context.Context, auth.Identity, uuid.UUID) (*ride.Ride, error)) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	r, err := op(c.Request.Context(), id, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// UpdateProgress handles POST /api/v1/rides/:id/progress
func (h *Handlers) UpdateProgress(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	r, err := h.Lifecycle.UpdateProgress(c.Request.Context(), id, rideID, lifecycle.ProgressInput{
		CurrentLatitude:      req.CurrentLatitude,
		CurrentLongitude:     req.CurrentLongitude,
		Progress:             req.Progress,
		EstimatedPickupTime:  req.EstimatedPickupTime,
		EstimatedDropoffTime: req.EstimatedDropoffTime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// RateRide handles POST /api/v1/rides/:id/rate
func (h *Handlers) RateRide(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	r, err := h.Lifecycle.Rate(c.Request.Context(), id, rideID, req.Rating, req.Feedback)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
