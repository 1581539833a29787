package seats

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHold      Status = "HOLD"
	StatusBooked    Status = "BOOKED"
)
