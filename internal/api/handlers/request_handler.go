package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/dto"
)

// RequestSeat handles POST /api/v1/rides/:id/request
func (h *Handlers) RequestSeat(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SeatRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.Lifecycle.RequestSeat(c.Request.Context(), id, rideID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListRideRequests handles GET /api/v1/rides/:id/requests
func (h *Handlers) ListRideRequests(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	rideID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	reqs, err := h.Lifecycle.ListRequests(c.Request.Context(), id, rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "count": len(reqs)})
}

// AcceptRequest handles POST /api/v1/requests/:id/accept
func (h *Handlers) AcceptRequest(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	requestID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	req, err := h.Lifecycle.Accept(c.Request.Context(), id, requestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// RejectRequest handles POST /api/v1/requests/:id/reject
func (h *Handlers) RejectRequest(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	requestID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	req, err := h.Lifecycle.Reject(c.Request.Context(), id, requestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CancelRequest handles DELETE /api/v1/requests/:id
func (h *Handlers) CancelRequest(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	requestID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Lifecycle.CancelRequest(c.Request.Context(), id, requestID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
