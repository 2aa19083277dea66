package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/dto"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
)

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	unreadOnly := c.Query("unread_only") == "true"

	items, err := h.Notifications.List(c.Request.Context(), id.UserID, limit, unreadOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *Handlers) UnreadCount(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	count, err := h.Notifications.UnreadCount(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	notificationID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Notifications.MarkRead(c.Request.Context(), notificationID, id.UserID); err != nil {
		if err == notification.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "notification not found"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	count, err := h.Notifications.MarkAllRead(c.Request.Context(), id.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": count})
}

// DeleteNotification handles DELETE /api/v1/notifications/:id. History
// is append-only, so this always reports the operation as unsupported.
func (h *Handlers) DeleteNotification(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	notificationID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Notifications.Delete(c.Request.Context(), notificationID, id.UserID); err != nil {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"code": "UNSUPPORTED", "error": "notifications cannot be deleted"})
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterPushToken handles POST /api/v1/notifications/push-tokens
func (h *Handlers) RegisterPushToken(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid request payload", "details": err.Error()})
		return
	}

	token := &notification.PushToken{
		UserID:    id.UserID,
		Token:     req.Token,
		Platform:  req.Platform,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Notifications.RegisterToken(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// UnregisterPushToken handles DELETE /api/v1/notifications/push-tokens/:token
func (h *Handlers) UnregisterPushToken(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "token is required"})
		return
	}

	if err := h.Notifications.UnregisterToken(c.Request.Context(), id.UserID, token); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
