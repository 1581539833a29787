package seats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buslane/internal/notifications"
	"buslane/internal/trips"
	"buslane/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TripService is the slice of the trips service the engine needs.
type TripService interface {
	GetActiveTrip(ctx context.Context, id uuid.UUID) (*trips.Trip, error)
	ReconcileCapacity(ctx context.Context, id uuid.UUID, seatCount int) error
}

// Producer publishes booking events; nil means notifications are disabled.
type Producer interface {
	PublishBookingFinalized(ctx context.Context, event notifications.BookingFinalizedEvent) error
}

type Service interface {
	SetTripService(tripService TripService)
	SetProducer(producer Producer)

	HoldSeat(ctx context.Context, tripID uuid.UUID, seatCode, holdToken string) (*HoldResult, error)
	ReleaseSeat(ctx context.Context, tripID uuid.UUID, seatCode, holdToken string) (*SeatPayload, error)
	AttachContact(ctx context.Context, tripID uuid.UUID, holdToken, customerName, customerWA string) (*AttachContactResult, error)
	ClaimByCode(ctx context.Context, tripID uuid.UUID, claimCode, newHoldToken, customerWA string) (*ClaimHoldResult, error)
	FinalizeBooking(ctx context.Context, tripID uuid.UUID, seatCodes []string) (*FinalizeResult, error)
	ConfirmBooking(ctx context.Context, tripID uuid.UUID, seatCodes []string) (*FinalizeResult, error)
	SeatMap(ctx context.Context, tripID uuid.UUID) (*SeatMapResponse, error)
	GenerateSeats(ctx context.Context, tripID uuid.UUID, req GenerateSeatsRequest) (*ProvisionResult, error)
}

type service struct {
	repo        Repository
	tripService TripService
	producer    Producer
	log         *logger.Logger

	holdDuration       time.Duration
	maxHoldsPerSession int

	// swapped out by tests for a controllable clock
	now func() time.Time
}

func NewService(repo Repository, holdDuration time.Duration, maxHoldsPerSession int) Service {
	return &service{
		repo:               repo,
		log:                logger.GetDefault(),
		holdDuration:       holdDuration,
		maxHoldsPerSession: maxHoldsPerSession,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SetTripService(tripService TripService) {
	s.tripService = tripService
}

func (s *service) SetProducer(producer Producer) {
	s.producer = producer
}

// HoldSeat places a hold on one seat for the session, or extends the
// deadline when the session already holds it.
func (s *service) HoldSeat(ctx context.Context, tripID uuid.UUID, seatCode, holdToken string) (*HoldResult, error) {
	seatCode = strings.TrimSpace(seatCode)

	var result *HoldResult
	err := s.repo.InTx(ctx, func(tx Repository) error {
		now := s.now()
		if err := s.sweep(ctx, tx, now); err != nil {
			return err
		}

		// Quota is counted before the seat is loaded, so a refresh attempt
		// while at the cap is rejected too
		held, err := tx.CountActiveHolds(ctx, tripID, holdToken, now)
		if err != nil {
			return fmt.Errorf("failed to count holds: %w", err)
		}
		if held >= int64(s.maxHoldsPerSession) {
			return fmt.Errorf("%w: max %d seats", ErrQuotaExceeded, s.maxHoldsPerSession)
		}

		seat, err := tx.GetByCodeForUpdate(ctx, tripID, seatCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return fmt.Errorf("failed to load seat: %w", err)
		}

		if seat.IsBooked() {
			return ErrAlreadyBooked
		}

		if seat.HasActiveHold(now) {
			if seat.HoldToken == nil || *seat.HoldToken != holdToken {
				return ErrHeldByOther
			}

			// Same session: extend the deadline only
			until := now.Add(s.holdDuration)
			seat.HoldUntil = &until
			if err := tx.Save(ctx, seat); err != nil {
				return fmt.Errorf("failed to refresh hold: %w", err)
			}
			result = &HoldResult{Seat: toSeatPayload(seat), Refreshed: true}
			return nil
		}

		// Available, or a lapsed hold the sweep has not caught yet: take it
		// and scrub whatever the previous occupant left behind
		until := now.Add(s.holdDuration)
		seat.Status = StatusHold
		seat.HoldToken = &holdToken
		seat.HoldUntil = &until
		seat.CustomerName = nil
		seat.CustomerWA = nil
		seat.ClaimCode = nil
		seat.BookedAt = nil
		seat.BookingCode = nil

		if err := tx.Save(ctx, seat); err != nil {
			return fmt.Errorf("failed to hold seat: %w", err)
		}
		result = &HoldResult{Seat: toSeatPayload(seat), Refreshed: false}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogHoldPlaced(ctx, tripID.String(), seatCode, result.Refreshed)
	return result, nil
}

// ReleaseSeat returns a seat the session holds to AVAILABLE.
func (s *service) ReleaseSeat(ctx context.Context, tripID uuid.UUID, seatCode, holdToken string) (*SeatPayload, error) {
	seatCode = strings.TrimSpace(seatCode)

	var result *SeatPayload
	err := s.repo.InTx(ctx, func(tx Repository) error {
		now := s.now()
		if err := s.sweep(ctx, tx, now); err != nil {
			return err
		}

		seat, err := tx.GetByCodeForUpdate(ctx, tripID, seatCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeatNotFound
			}
			return fmt.Errorf("failed to load seat: %w", err)
		}

		if !seat.HasActiveHold(now) {
			return ErrNotHeld
		}
		if seat.HoldToken == nil || *seat.HoldToken != holdToken {
			return ErrForbidden
		}

		seat.Status = StatusAvailable
		seat.clearHoldState()
		if err := tx.Save(ctx, seat); err != nil {
			return fmt.Errorf("failed to release seat: %w", err)
		}

		payload := toSeatPayload(seat)
		result = &payload
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogSeatReleased(ctx, tripID.String(), seatCode)
	return result, nil
}

// AttachContact stamps the passenger's name and WhatsApp number on every
// active hold of the session and issues one claim code for the whole cohort.
func (s *service) AttachContact(ctx context.Context, tripID uuid.UUID, holdToken, customerName, customerWA string) (*AttachContactResult, error) {
	trip, err := s.tripService.GetActiveTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	var result *AttachContactResult
	err = s.repo.InTx(ctx, func(tx Repository) error {
		now := s.now()
		if err := s.sweep(ctx, tx, now); err != nil {
			return err
		}

		held, err := tx.ListActiveHoldsForUpdate(ctx, tripID, holdToken, now)
		if err != nil {
			return fmt.Errorf("failed to load holds: %w", err)
		}
		if len(held) == 0 {
			return ErrNoActiveHold
		}

		claimCode := GenerateClaimCode()

		ids := make([]uuid.UUID, len(held))
		codes := make([]string, len(held))
		var latest *time.Time
		for i := range held {
			ids[i] = held[i].ID
			codes[i] = held[i].Code
			if held[i].HoldUntil != nil && (latest == nil || held[i].HoldUntil.After(*latest)) {
				latest = held[i].HoldUntil
			}
		}

		err = tx.UpdateFields(ctx, ids, map[string]interface{}{
			"customer_name": strings.TrimSpace(customerName),
			"customer_wa":   strings.TrimSpace(customerWA),
			"claim_code":    claimCode,
		})
		if err != nil {
			return fmt.Errorf("failed to attach contact: %w", err)
		}

		result = &AttachContactResult{
			ClaimCode: claimCode,
			SeatCodes: codes,
			HoldUntil: latest,
			AdminWA:   trip.AdminWA,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClaimByCode moves every seat carrying the claim code to a new session
// token. Only the token changes; deadlines and contact data stay put.
func (s *service) ClaimByCode(ctx context.Context, tripID uuid.UUID, claimCode, newHoldToken, customerWA string) (*ClaimHoldResult, error) {
	claimCode = strings.ToUpper(strings.TrimSpace(claimCode))
	customerWA = strings.TrimSpace(customerWA)

	var result *ClaimHoldResult
	err := s.repo.InTx(ctx, func(tx Repository) error {
		now := s.now()
		if err := s.sweep(ctx, tx, now); err != nil {
			return err
		}

		held, err := tx.ListByClaimForUpdate(ctx, tripID, claimCode, customerWA, now)
		if err != nil {
			return fmt.Errorf("failed to load claim: %w", err)
		}
		if len(held) == 0 {
			return ErrInvalidClaim
		}

		ids := make([]uuid.UUID, len(held))
		codes := make([]string, len(held))
		var latest *time.Time
		for i := range held {
			ids[i] = held[i].ID
			codes[i] = held[i].Code
			if held[i].HoldUntil != nil && (latest == nil || held[i].HoldUntil.After(*latest)) {
				latest = held[i].HoldUntil
			}
		}

		err = tx.UpdateFields(ctx, ids, map[string]interface{}{
			"hold_token": newHoldToken,
		})
		if err != nil {
			return fmt.Errorf("failed to transfer hold: %w", err)
		}

		result = &ClaimHoldResult{SeatCodes: codes, HoldUntil: latest}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogClaimTransferred(ctx, tripID.String(), len(result.SeatCodes))
	return result, nil
}

// FinalizeBooking marks the named seats BOOKED and stamps a generated
// booking code on them.
func (s *service) FinalizeBooking(ctx context.Context, tripID uuid.UUID, seatCodes []string) (*FinalizeResult, error) {
	return s.finalize(ctx, tripID, seatCodes, true)
}

// ConfirmBooking is the legacy finalize variant: seats go BOOKED without a
// booking code.
func (s *service) ConfirmBooking(ctx context.Context, tripID uuid.UUID, seatCodes []string) (*FinalizeResult, error) {
	return s.finalize(ctx, tripID, seatCodes, false)
}

func (s *service) finalize(ctx context.Context, tripID uuid.UUID, seatCodes []string, withCode bool) (*FinalizeResult, error) {
	for i := range seatCodes {
		seatCodes[i] = strings.TrimSpace(seatCodes[i])
	}

	var result *FinalizeResult
	err := s.repo.InTx(ctx, func(tx Repository) error {
		now := s.now()
		if err := s.sweep(ctx, tx, now); err != nil {
			return err
		}

		found, err := tx.ListByCodesForUpdate(ctx, tripID, seatCodes)
		if err != nil {
			return fmt.Errorf("failed to load seats: %w", err)
		}
		if len(found) != len(seatCodes) {
			return fmt.Errorf("%w: %s", ErrSeatNotFound, strings.Join(missingCodes(seatCodes, found), ", "))
		}

		var alreadyBooked []string
		for i := range found {
			if found[i].IsBooked() {
				alreadyBooked = append(alreadyBooked, found[i].Code)
			}
		}
		if len(alreadyBooked) > 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyBooked, strings.Join(alreadyBooked, ", "))
		}

		updates := map[string]interface{}{
			"status":     StatusBooked,
			"booked_at":  now,
			"hold_token": nil,
			"hold_until": nil,
		}
		var bookingCode string
		if withCode {
			bookingCode = GenerateBookingCode()
			updates["booking_code"] = bookingCode
		}

		ids := make([]uuid.UUID, len(found))
		for i := range found {
			ids[i] = found[i].ID
		}
		if err := tx.UpdateFields(ctx, ids, updates); err != nil {
			return fmt.Errorf("failed to finalize booking: %w", err)
		}

		result = &FinalizeResult{SeatCodes: seatCodes, BookingCode: bookingCode}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogBookingFinalized(ctx, tripID.String(), len(result.SeatCodes), result.BookingCode)
	s.publishFinalized(ctx, tripID, result)
	return result, nil
}

// publishFinalized emits the booking event after commit; delivery failures
// never fail the booking.
func (s *service) publishFinalized(ctx context.Context, tripID uuid.UUID, result *FinalizeResult) {
	if s.producer == nil {
		return
	}
	event := notifications.BookingFinalizedEvent{
		TripID:      tripID.String(),
		SeatCodes:   result.SeatCodes,
		BookingCode: result.BookingCode,
		BookedAt:    s.now(),
	}
	if err := s.producer.PublishBookingFinalized(ctx, event); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish booking event", err, map[string]interface{}{
			"trip_id": tripID.String(),
		})
	}
}

// SeatMap returns the trip header plus the public projection of every seat,
// ordered by code.
func (s *service) SeatMap(ctx context.Context, tripID uuid.UUID) (*SeatMapResponse, error) {
	trip, err := s.tripService.GetActiveTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	// Sweep so the map never shows a lapsed hold
	if _, err := s.repo.ReleaseExpired(ctx, s.now()); err != nil {
		return nil, fmt.Errorf("failed to sweep holds: %w", err)
	}

	seatRows, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	entries := make([]SeatMapEntry, len(seatRows))
	for i := range seatRows {
		entries[i] = toSeatMapEntry(&seatRows[i])
	}

	return &SeatMapResponse{Trip: trip.ToResponse(), Seats: entries}, nil
}

// GenerateSeats provisions a rows × seats-per-row layout for the trip and
// reconciles the trip capacity with the resulting seat count.
func (s *service) GenerateSeats(ctx context.Context, tripID uuid.UUID, req GenerateSeatsRequest) (*ProvisionResult, error) {
	trip, err := s.tripService.GetActiveTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	prefix := strings.ToUpper(strings.TrimSpace(req.Prefix))

	var result *ProvisionResult
	err = s.repo.InTx(ctx, func(tx Repository) error {
		var deleted int64
		if req.Reset {
			var err error
			deleted, err = tx.DeleteByTrip(ctx, tripID)
			if err != nil {
				return fmt.Errorf("failed to reset seats: %w", err)
			}
		}

		existingCodes, err := tx.ListCodesByTrip(ctx, tripID)
		if err != nil {
			return fmt.Errorf("failed to list seat codes: %w", err)
		}
		existing := make(map[string]bool, len(existingCodes))
		for _, code := range existingCodes {
			existing[code] = true
		}

		var batch []Seat
		for row := 0; row < req.Rows; row++ {
			rowLetter := string(rune('A' + row))
			for num := 1; num <= req.SeatsPerRow; num++ {
				code := fmt.Sprintf("%s%s%d", prefix, rowLetter, num)
				if existing[code] {
					continue
				}
				batch = append(batch, Seat{
					ID:     uuid.New(),
					TripID: tripID,
					Code:   code,
					Status: StatusAvailable,
				})
			}
		}

		if err := tx.CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to create seats: %w", err)
		}

		total, err := tx.CountByTrip(ctx, tripID)
		if err != nil {
			return fmt.Errorf("failed to count seats: %w", err)
		}

		result = &ProvisionResult{
			Created:    len(batch),
			Deleted:    int(deleted),
			TotalSeats: int(total),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if trip.CapacityTotal != result.TotalSeats {
		if err := s.tripService.ReconcileCapacity(ctx, tripID, result.TotalSeats); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// sweep releases lapsed holds inside the caller's transaction so every
// decision below it sees only live state.
func (s *service) sweep(ctx context.Context, tx Repository, now time.Time) error {
	released, err := tx.ReleaseExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to sweep holds: %w", err)
	}
	if released > 0 {
		s.log.LogHoldsExpired(ctx, released)
	}
	return nil
}

func missingCodes(requested []string, found []Seat) []string {
	present := make(map[string]bool, len(found))
	for i := range found {
		present[found[i].Code] = true
	}
	var missing []string
	for _, code := range requested {
		if !present[code] {
			missing = append(missing, code)
		}
	}
	// Duplicate codes in the request collapse in the store; name them too
	if len(missing) == 0 {
		missing = append(missing, "duplicate seat codes in request")
	}
	return missing
}
