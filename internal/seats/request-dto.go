package seats

// HoldSeatRequest asks for one seat to be held for the caller's session
type HoldSeatRequest struct {
	SeatCode string `json:"seat_code" validate:"required,min=1,max=8"`
}

// ReleaseSeatRequest gives a held seat back
type ReleaseSeatRequest struct {
	SeatCode string `json:"seat_code" validate:"required,min=1,max=8"`
}

// AttachContactRequest attaches passenger contact info to every active hold
// of the session on the trip
type AttachContactRequest struct {
	CustomerName string `json:"customer_name" validate:"required,min=2,max=120"`
	CustomerWA   string `json:"customer_wa" validate:"required,min=8,max=32"`
}

// ClaimHoldRequest moves a hold cohort to the caller's session using the
// shared claim code; the WhatsApp number is an optional second factor
type ClaimHoldRequest struct {
	ClaimCode  string `json:"claim_code" validate:"required,min=4,max=16"`
	CustomerWA string `json:"customer_wa" validate:"omitempty,min=8,max=32"`
}

// FinalizeBookingRequest marks the named seats BOOKED
type FinalizeBookingRequest struct {
	SeatCodes []string `json:"seat_codes" validate:"required,min=1,max=64,dive,min=1,max=8"`
}

// GenerateSeatsRequest provisions a rows × seats-per-row layout for a trip
type GenerateSeatsRequest struct {
	Rows        int    `json:"rows" validate:"required,min=1,max=26"`
	SeatsPerRow int    `json:"seats_per_row" validate:"required,min=1,max=10"`
	Prefix      string `json:"prefix" validate:"omitempty,max=3"`
	Reset       bool   `json:"reset"`
}
