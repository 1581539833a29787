package seats

import "errors"

var (
	ErrTripNotFound = errors.New("trip not found")
	ErrSeatNotFound = errors.New("seat not found")

	// Hold path
	ErrAlreadyBooked = errors.New("seat already booked")
	ErrHeldByOther   = errors.New("seat held by another session")
	ErrQuotaExceeded = errors.New("hold limit reached")

	// Release path
	ErrNotHeld   = errors.New("seat has no active hold")
	ErrForbidden = errors.New("hold belongs to another session")

	// Contact / claim path
	ErrNoActiveHold = errors.New("no active holds for this session")
	ErrInvalidClaim = errors.New("claim code invalid or expired")
)
