package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/config"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/payment"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/lifecycle"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/matching"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/tracking"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/errors"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Lifecycle     *lifecycle.Service
	Matcher       *matching.Matcher
	Tracker       *tracking.Tracker
	Notifications *notification.Service
	Payments      payment.Processor
	Hub           *realtime.Hub
	Verifier      auth.Verifier
	HubConfig     config.HubConfig
	Logger        *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	lc *lifecycle.Service,
	matcher *matching.Matcher,
	tracker *tracking.Tracker,
	notifications *notification.Service,
	payments payment.Processor,
	hub *realtime.Hub,
	verifier auth.Verifier,
	hubCfg config.HubConfig,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		Lifecycle:     lc,
		Matcher:       matcher,
		Tracker:       tracker,
		Notifications: notifications,
		Payments:      payments,
		Hub:           hub,
		Verifier:      verifier,
		HubConfig:     hubCfg,
		Logger:        log,
	}
}

// respondError maps any error onto the API's error envelope.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := errors.GetAppError(err)
	if appErr.Status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, gin.H{"code": appErr.Code, "error": appErr.Message})
}

// identity pulls the authenticated caller set by the auth middleware.
func (h *Handlers) identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "authentication required"})
	}
	return id, ok
}

// pathUUID parses a uuid path parameter, responding 400 on garbage.
func (h *Handlers) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
