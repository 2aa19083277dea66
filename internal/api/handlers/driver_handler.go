package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/dto"
)

const defaultDriverSearchRadiusKM = 5.0

// ListDrivers handles GET /api/v1/drivers
func (h *Handlers) ListDrivers(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	drivers, err := h.Lifecycle.Drivers(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "count": len(drivers)})
}

// NearbyDrivers handles GET /api/v1/drivers/nearby. Presence comes from the
// realtime hub, so only currently connected drivers are returned.
func (h *Handlers) NearbyDrivers(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var q dto.NearbyDriversQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid query parameters", "details": err.Error()})
		return
	}
	radius := q.RadiusKM
	if radius <= 0 {
		radius = defaultDriverSearchRadiusKM
	}

	drivers := h.Hub.FindNearbyDrivers(id.CompanyID, q.Latitude, q.Longitude, radius)
	c.JSON(http.StatusOK, gin.H{"drivers": drivers, "count": len(drivers)})
}
