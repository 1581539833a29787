package trips

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupTripRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - anyone can browse trips
	publicTrips := router.Group("/trips")
	{
		publicTrips.GET("", controller.ListTrips)       // GET /api/v1/trips
		publicTrips.GET("/:tripId", controller.GetTrip) // GET /api/v1/trips/:tripId
	}

	// Admin routes - trip management behind the API key gate
	adminTrips := router.Group("/admin/trips")
	adminTrips.Use(middleware.RequireAdmin(cfg))
	{
		adminTrips.POST("", controller.CreateTrip)                        // POST /api/v1/admin/trips
		adminTrips.POST("/:tripId/deactivate", controller.DeactivateTrip) // POST /api/v1/admin/trips/:tripId/deactivate
	}
}
