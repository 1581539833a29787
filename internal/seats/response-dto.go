package seats

import (
	"time"

	"buslane/internal/trips"
)

// SeatMapEntry is the public projection of one seat. Token, claim code,
// booking code and contact fields never appear here.
type SeatMapEntry struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Status    Status     `json:"status"`
	HoldUntil *time.Time `json:"hold_until"`
}

// SeatMapResponse pairs the trip header with the full seat list
type SeatMapResponse struct {
	Trip  trips.TripResponse `json:"trip"`
	Seats []SeatMapEntry     `json:"seats"`
}

// SeatPayload is returned to the session that owns the hold; it may carry
// the claim and booking codes because the caller already knows them.
type SeatPayload struct {
	ID          string     `json:"id"`
	TripID      string     `json:"trip_id"`
	Code        string     `json:"code"`
	Status      Status     `json:"status"`
	HoldUntil   *time.Time `json:"hold_until"`
	ClaimCode   *string    `json:"claim_code"`
	BookingCode *string    `json:"booking_code"`
}

// HoldResult reports a placed or refreshed hold
type HoldResult struct {
	Seat      SeatPayload `json:"seat"`
	Refreshed bool        `json:"refreshed"`
}

// AttachContactResult carries the shared claim code for the whole cohort
// plus the operator contact the frontend redirects to
type AttachContactResult struct {
	ClaimCode string     `json:"claim_code"`
	SeatCodes []string   `json:"seat_codes"`
	HoldUntil *time.Time `json:"hold_until"`
	AdminWA   string     `json:"admin_wa"`
}

// ClaimHoldResult reports the seats that moved to the new session
type ClaimHoldResult struct {
	SeatCodes []string   `json:"seat_codes"`
	HoldUntil *time.Time `json:"hold_until"`
}

// FinalizeResult reports the seats marked BOOKED; BookingCode is empty for
// the legacy confirm variant
type FinalizeResult struct {
	SeatCodes   []string `json:"seat_codes"`
	BookingCode string   `json:"booking_code,omitempty"`
}

// ProvisionResult reports a seat generation run
type ProvisionResult struct {
	Created    int `json:"created"`
	Deleted    int `json:"deleted"`
	TotalSeats int `json:"total_seats"`
}

func toSeatPayload(s *Seat) SeatPayload {
	return SeatPayload{
		ID:          s.ID.String(),
		TripID:      s.TripID.String(),
		Code:        s.Code,
		Status:      s.Status,
		HoldUntil:   s.HoldUntil,
		ClaimCode:   s.ClaimCode,
		BookingCode: s.BookingCode,
	}
}

func toSeatMapEntry(s *Seat) SeatMapEntry {
	return SeatMapEntry{
		ID:        s.ID.String(),
		Code:      s.Code,
		Status:    s.Status,
		HoldUntil: s.HoldUntil,
	}
}
