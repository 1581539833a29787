package seats

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public seat map - no session required
	router.GET("/trips/:tripId/seat-map", controller.GetSeatMap)

	// Reservation flow - session token resolved per request
	reservation := router.Group("/trips/:tripId/seats")
	reservation.Use(middleware.SessionToken(cfg))
	{
		reservation.POST("/hold", controller.HoldSeat)        // POST /api/v1/trips/:tripId/seats/hold
		reservation.POST("/release", controller.ReleaseSeat)  // POST /api/v1/trips/:tripId/seats/release
		reservation.POST("/attach", controller.AttachContact) // POST /api/v1/trips/:tripId/seats/attach
		reservation.POST("/claim", controller.ClaimHold)      // POST /api/v1/trips/:tripId/seats/claim
	}

	// Admin finalize + provisioning behind the API key gate
	admin := router.Group("/admin/trips/:tripId/seats")
	admin.Use(middleware.RequireAdmin(cfg))
	{
		admin.POST("/book", controller.FinalizeBooking)   // POST /api/v1/admin/trips/:tripId/seats/book
		admin.POST("/confirm", controller.ConfirmBooking) // POST /api/v1/admin/trips/:tripId/seats/confirm
		admin.POST("/generate", controller.GenerateSeats) // POST /api/v1/admin/trips/:tripId/seats/generate
	}
}
