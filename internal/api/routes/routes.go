package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/handlers"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/config"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/monitoring"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nr *monitoring.NewRelicApp, corsCfg config.CORSConfig) {
	if nr != nil && nr.IsEnabled() {
		r.Use(nrgin.Middleware(nr.Application))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsCfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket connection authenticates itself from the handshake token
	r.GET("/ws", h.HandleWebSocket)

	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(h.Verifier))
	{
		// Ride endpoints
		rides := v1.Group("/rides")
		{
			rides.POST("", h.CreateRide)
			rides.GET("", h.ListRides)
			rides.GET("/mine", h.ListMyRides)
			rides.GET("/matches", h.FindMatches)
			rides.GET("/:id", h.GetRide)
			rides.PUT("/:id", h.UpdateRide)
			rides.DELETE("/:id", h.DeleteRide)

			rides.POST("/:id/request", h.RequestSeat)
			rides.GET("/:id/requests", h.ListRideRequests)

			rides.POST("/:id/start", h.StartRide)
			rides.POST("/:id/progress", h.UpdateProgress)
			rides.POST("/:id/pickup", h.PickupPassengers)
			rides.POST("/:id/complete", h.CompleteRide)
			rides.POST("/:id/cancel", h.CancelRide)
			rides.POST("/:id/rate", h.RateRide)

			rides.POST("/:id/locations", h.ReportLocation)
			rides.GET("/:id/locations", h.ListLocations)
		}

		// Seat request endpoints
		requests := v1.Group("/requests")
		{
			requests.POST("/:id/accept", h.AcceptRequest)
			requests.POST("/:id/reject", h.RejectRequest)
			requests.DELETE("/:id", h.CancelRequest)
		}

		// Notification endpoints
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.UnreadCount)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
			notifications.DELETE("/:id", h.DeleteNotification)
			notifications.POST("/push-tokens", h.RegisterPushToken)
			notifications.DELETE("/push-tokens/:token", h.UnregisterPushToken)
		}

		// Payment endpoints
		payments := v1.Group("/payments")
		{
			payments.GET("", h.ListMyPayments)
			payments.GET("/company", h.ListCompanyPayments)
			payments.GET("/company/summary", h.CompanyPaymentSummary)
			payments.GET("/:id", h.GetPayment)
			payments.POST("/:id/refund", h.RefundPayment)
		}

		// Driver endpoints
		drivers := v1.Group("/drivers")
		{
			drivers.GET("", h.ListDrivers)
			drivers.GET("/nearby", h.NearbyDrivers)
		}
	}
}
