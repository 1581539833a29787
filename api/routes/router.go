// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"buslane/internal/notifications"
	"buslane/internal/seats"
	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/internal/trips"
	"buslane/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.BookingProducer

	// Shared across setup funcs for dependency injection
	cacheService cache.Service
	tripService  trips.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.BookingProducer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Shared cache service
	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.GetRedisClient())
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Trip routes first: the seat routes take the trip service
		r.setupTripRoutes(api)
		r.setupSeatRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "buslane-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "buslane-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupTripRoutes configures trip management routes
func (r *Router) setupTripRoutes(rg *gin.RouterGroup) {
	tripRepo := trips.NewRepository(r.db.GetPostgreSQL())
	tripService := trips.NewService(tripRepo)

	if r.cacheService != nil {
		tripService.SetCacheService(r.cacheService)
	}

	// Store trip service for dependency injection
	r.tripService = tripService

	tripController := trips.NewController(tripService)
	trips.SetupTripRoutes(rg, tripController, r.config)
}

// setupSeatRoutes configures the reservation engine routes
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	seatRepo := seats.NewRepository(r.db.GetPostgreSQL())
	seatService := seats.NewService(seatRepo, r.config.Booking.HoldDuration, r.config.Booking.MaxHoldsPerSession)

	seatService.SetTripService(r.tripService)
	if r.producer != nil {
		seatService.SetProducer(r.producer)
	}

	seatController := seats.NewController(seatService)
	seats.SetupSeatRoutes(rg, seatController, r.config)
}
