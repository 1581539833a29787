package seats

import (
	"errors"
	"net/http"

	"buslane/internal/shared/middleware"
	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller interface {
	GetSeatMap(c *gin.Context)
	HoldSeat(c *gin.Context)
	ReleaseSeat(c *gin.Context)
	AttachContact(c *gin.Context)
	ClaimHold(c *gin.Context)
	FinalizeBooking(c *gin.Context)
	ConfirmBooking(c *gin.Context)
	GenerateSeats(c *gin.Context)
}

type controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) Controller {
	return &controller{
		service:   service,
		validator: validator.New(),
	}
}

// bindRequest decodes the JSON body and runs struct validation on it
func (ctrl *controller) bindRequest(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return false
	}
	if err := ctrl.validator.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return false
	}
	return true
}

// statusForError maps engine sentinels onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrTripNotFound), errors.Is(err, ErrSeatNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyBooked), errors.Is(err, ErrHeldByOther), errors.Is(err, ErrNotHeld):
		return http.StatusConflict
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrNoActiveHold), errors.Is(err, ErrInvalidClaim):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	response.RespondJSON(c, "error", status, message, nil, nil)
}

func parseTripID(c *gin.Context) (uuid.UUID, bool) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid trip ID", nil, err.Error())
		return uuid.Nil, false
	}
	return tripID, true
}

func (ctrl *controller) GetSeatMap(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	seatMap, err := ctrl.service.SeatMap(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

func (ctrl *controller) HoldSeat(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req HoldSeatRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.HoldSeat(c.Request.Context(), tripID, req.SeatCode, middleware.GetSessionToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Seat held successfully"
	if result.Refreshed {
		message = "Hold extended"
	}
	response.RespondJSON(c, "success", http.StatusOK, message, result, nil)
}

func (ctrl *controller) ReleaseSeat(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req ReleaseSeatRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.ReleaseSeat(c.Request.Context(), tripID, req.SeatCode, middleware.GetSessionToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Hold released", result, nil)
}

func (ctrl *controller) AttachContact(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req AttachContactRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.AttachContact(c.Request.Context(), tripID,
		middleware.GetSessionToken(c), req.CustomerName, req.CustomerWA)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Contact saved and claim code issued", result, nil)
}

func (ctrl *controller) ClaimHold(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req ClaimHoldRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.ClaimByCode(c.Request.Context(), tripID,
		req.ClaimCode, middleware.GetSessionToken(c), req.CustomerWA)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Hold claimed successfully", result, nil)
}

func (ctrl *controller) FinalizeBooking(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req FinalizeBookingRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.FinalizeBooking(c.Request.Context(), tripID, req.SeatCodes)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seats booked and booking code issued", result, nil)
}

func (ctrl *controller) ConfirmBooking(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req FinalizeBookingRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.ConfirmBooking(c.Request.Context(), tripID, req.SeatCodes)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Seats confirmed as booked", result, nil)
}

func (ctrl *controller) GenerateSeats(c *gin.Context) {
	tripID, ok := parseTripID(c)
	if !ok {
		return
	}

	var req GenerateSeatsRequest
	if !ctrl.bindRequest(c, &req) {
		return
	}

	result, err := ctrl.service.GenerateSeats(c.Request.Context(), tripID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Seats generated successfully", result, nil)
}
