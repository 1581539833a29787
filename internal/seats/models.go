package seats

import (
	"time"

	"github.com/google/uuid"
)

// Seat is one seat on one trip. Hold state lives directly on the row so a
// single locked read answers every reservation question about the seat.
type Seat struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TripID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_trip_seat_code" json:"trip_id"`
	Code   string    `gorm:"not null;size:8;uniqueIndex:idx_trip_seat_code" json:"code"`
	Status Status    `gorm:"type:varchar(20);check:status IN ('AVAILABLE', 'HOLD', 'BOOKED');default:'AVAILABLE';not null" json:"status"`

	// Hold state. HoldToken is a bearer credential and never leaves the
	// service layer.
	HoldToken *string    `gorm:"size:64" json:"-"`
	HoldUntil *time.Time `json:"hold_until,omitempty"`

	// Contact attached by the holder before handoff to the operator
	CustomerName *string `gorm:"size:120" json:"-"`
	CustomerWA   *string `gorm:"size:32" json:"-"`
	ClaimCode    *string `gorm:"size:16" json:"-"`

	// Finalization
	BookingCode *string    `gorm:"size:16" json:"-"`
	BookedAt    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// HasActiveHold reports whether the seat is held and the deadline has not
// passed at the given instant.
func (s *Seat) HasActiveHold(now time.Time) bool {
	return s.Status == StatusHold && s.HoldUntil != nil && !s.HoldUntil.Before(now)
}

func (s *Seat) IsBooked() bool {
	return s.Status == StatusBooked
}

// clearHoldState resets everything a hold or stale booking left behind
func (s *Seat) clearHoldState() {
	s.HoldToken = nil
	s.HoldUntil = nil
	s.CustomerName = nil
	s.CustomerWA = nil
	s.ClaimCode = nil
}
