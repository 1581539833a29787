package trips

import (
	"errors"
	"net/http"

	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	ListTrips(c *gin.Context)
	GetTrip(c *gin.Context)
	CreateTrip(c *gin.Context)
	DeactivateTrip(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ListTrips(c *gin.Context) {
	result, err := ctrl.service.ListActiveTrips(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list trips", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trips retrieved successfully", result, nil)
}

func (ctrl *controller) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	trip, err := ctrl.service.GetActiveTrip(c.Request.Context(), tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Trip not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to get trip", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip retrieved successfully", trip.ToResponse(), nil)
}

func (ctrl *controller) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	trip, err := ctrl.service.CreateTrip(c.Request.Context(), req)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Trip created successfully", trip, nil)
}

func (ctrl *controller) DeactivateTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeactivateTrip(c.Request.Context(), tripID); err != nil {
		if errors.Is(err, ErrTripNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, "Trip not found", nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to deactivate trip", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Trip deactivated successfully", nil, nil)
}
