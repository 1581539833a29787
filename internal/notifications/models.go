package notifications

import (
	"encoding/json"
	"time"
)

// BookingFinalizedEvent is published when an operator marks seats BOOKED.
// Downstream consumers (WhatsApp confirmation sender, reporting) key off the
// trip so one trip's bookings stay ordered within a partition.
type BookingFinalizedEvent struct {
	TripID      string    `json:"trip_id"`
	SeatCodes   []string  `json:"seat_codes"`
	BookingCode string    `json:"booking_code,omitempty"`
	BookedAt    time.Time `json:"booked_at"`
}

func (e *BookingFinalizedEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey routes all events of one trip to the same partition
func (e *BookingFinalizedEvent) GetPartitionKey() string {
	return e.TripID
}
