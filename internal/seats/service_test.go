package seats

import (
	"context"
	"strings"
	"testing"
	"time"

	"buslane/internal/trips"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenA = "token-aaa"
	tokenB = "token-bbb"
)

type engineFixture struct {
	svc    *service
	repo   *MemoryRepository
	trips  trips.Service
	tripID uuid.UUID
	clock  time.Time
}

func (f *engineFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// newEngine builds the engine over the in-memory stores with a trip of
// rows × seatsPerRow seats and a controllable clock.
func newEngine(t *testing.T, rows, seatsPerRow int) *engineFixture {
	t.Helper()
	ctx := context.Background()

	tripSvc := trips.NewService(trips.NewMemoryRepository())
	created, err := tripSvc.CreateTrip(ctx, trips.CreateTripRequest{
		Title:     "Jakarta - Bandung",
		BusType:   "Executive",
		RouteFrom: "Jakarta",
		RouteTo:   "Bandung",
		DepartAt:  time.Now().Add(72 * time.Hour),
		Price:     150000,
		AdminWA:   "628111222333",
	})
	require.NoError(t, err)

	repo := NewMemoryRepository()
	svc := NewService(repo, 10*time.Minute, 4).(*service)
	svc.SetTripService(tripSvc)

	fixture := &engineFixture{
		svc:    svc,
		repo:   repo,
		trips:  tripSvc,
		tripID: uuid.MustParse(created.ID),
		clock:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return fixture.clock }

	_, err = svc.GenerateSeats(ctx, fixture.tripID, GenerateSeatsRequest{
		Rows:        rows,
		SeatsPerRow: seatsPerRow,
	})
	require.NoError(t, err)

	return fixture
}

func (f *engineFixture) seat(t *testing.T, code string) *Seat {
	t.Helper()
	seat, err := f.repo.GetByCodeForUpdate(context.Background(), f.tripID, code)
	require.NoError(t, err)
	return seat
}

func TestHoldSeat_PlacesHold(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	result, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	assert.False(t, result.Refreshed)
	assert.Equal(t, StatusHold, result.Seat.Status)
	require.NotNil(t, result.Seat.HoldUntil)
	assert.Equal(t, f.clock.Add(10*time.Minute), *result.Seat.HoldUntil)

	stored := f.seat(t, "A1")
	require.NotNil(t, stored.HoldToken)
	assert.Equal(t, tokenA, *stored.HoldToken)
}

func TestHoldSeat_HeldByOther(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	_, err = f.svc.HoldSeat(ctx, f.tripID, "A1", tokenB)
	assert.ErrorIs(t, err, ErrHeldByOther)
}

func TestHoldSeat_RefreshExtendsDeadlineOnly(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	first, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	f.advance(5 * time.Minute)

	second, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	assert.True(t, second.Refreshed)
	assert.True(t, second.Seat.HoldUntil.After(*first.Seat.HoldUntil))
}

func TestHoldSeat_ExpiredHoldIsTaken(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	_, err = f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	require.NoError(t, err)

	f.advance(11 * time.Minute)

	result, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenB)
	require.NoError(t, err)
	assert.False(t, result.Refreshed)

	// The previous occupant's contact and claim data is gone
	stored := f.seat(t, "A1")
	require.NotNil(t, stored.HoldToken)
	assert.Equal(t, tokenB, *stored.HoldToken)
	assert.Nil(t, stored.CustomerName)
	assert.Nil(t, stored.CustomerWA)
	assert.Nil(t, stored.ClaimCode)
}

func TestHoldSeat_NotFound(t *testing.T) {
	f := newEngine(t, 2, 2)

	_, err := f.svc.HoldSeat(context.Background(), f.tripID, "Z9", tokenA)
	assert.ErrorIs(t, err, ErrSeatNotFound)
}

func TestHoldSeat_AlreadyBooked(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	_, err = f.svc.FinalizeBooking(ctx, f.tripID, []string{"A1"})
	require.NoError(t, err)

	_, err = f.svc.HoldSeat(ctx, f.tripID, "A1", tokenB)
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestHoldSeat_QuotaExceeded(t *testing.T) {
	f := newEngine(t, 2, 3)
	ctx := context.Background()

	for _, code := range []string{"A1", "A2", "A3", "B1"} {
		_, err := f.svc.HoldSeat(ctx, f.tripID, code, tokenA)
		require.NoError(t, err)
	}

	_, err := f.svc.HoldSeat(ctx, f.tripID, "B2", tokenA)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// The cap is checked before the seat is loaded, so even refreshing an
	// already-held seat is rejected at the limit
	_, err = f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestHoldSeat_QuotaFreedByExpiry(t *testing.T) {
	f := newEngine(t, 2, 3)
	ctx := context.Background()

	for _, code := range []string{"A1", "A2", "A3", "B1"} {
		_, err := f.svc.HoldSeat(ctx, f.tripID, code, tokenA)
		require.NoError(t, err)
	}

	f.advance(11 * time.Minute)

	_, err := f.svc.HoldSeat(ctx, f.tripID, "B2", tokenA)
	assert.NoError(t, err)
}

func TestReleaseSeat(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	result, err := f.svc.ReleaseSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, result.Status)
	assert.Nil(t, result.HoldUntil)

	// Released seat can be held by anyone
	_, err = f.svc.HoldSeat(ctx, f.tripID, "A1", tokenB)
	assert.NoError(t, err)
}

func TestReleaseSeat_Forbidden(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	_, err = f.svc.ReleaseSeat(ctx, f.tripID, "A1", tokenB)
	assert.ErrorIs(t, err, ErrForbidden)

	// The hold is untouched
	stored := f.seat(t, "A1")
	assert.Equal(t, StatusHold, stored.Status)
}

func TestReleaseSeat_NotHeld(t *testing.T) {
	f := newEngine(t, 2, 2)

	_, err := f.svc.ReleaseSeat(context.Background(), f.tripID, "A1", tokenA)
	assert.ErrorIs(t, err, ErrNotHeld)
}

func TestReleaseSeat_ExpiredHoldIsNotHeld(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	f.advance(11 * time.Minute)

	_, err = f.svc.ReleaseSeat(ctx, f.tripID, "A1", tokenA)
	assert.ErrorIs(t, err, ErrNotHeld)
}

func TestAttachContact_IssuesOneClaimCodeForCohort(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A2", tokenA)
	require.NoError(t, err)
	f.advance(1 * time.Minute)
	_, err = f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	result, err := f.svc.AttachContact(ctx, f.tripID, tokenA, "  Budi ", " 08123456789 ")
	require.NoError(t, err)

	assert.Regexp(t, claimCodePattern, result.ClaimCode)
	assert.Equal(t, []string{"A1", "A2"}, result.SeatCodes)
	assert.Equal(t, "628111222333", result.AdminWA)
	// The cohort deadline is the farthest one out (A1 was held later)
	require.NotNil(t, result.HoldUntil)
	assert.Equal(t, f.clock.Add(10*time.Minute), *result.HoldUntil)

	// Both seats share the code and carry trimmed contact data
	for _, code := range []string{"A1", "A2"} {
		stored := f.seat(t, code)
		require.NotNil(t, stored.ClaimCode)
		assert.Equal(t, result.ClaimCode, *stored.ClaimCode)
		require.NotNil(t, stored.CustomerName)
		assert.Equal(t, "Budi", *stored.CustomerName)
		require.NotNil(t, stored.CustomerWA)
		assert.Equal(t, "08123456789", *stored.CustomerWA)
	}
}

func TestAttachContact_NoActiveHold(t *testing.T) {
	f := newEngine(t, 2, 2)

	_, err := f.svc.AttachContact(context.Background(), f.tripID, tokenA, "Budi", "08123456789")
	assert.ErrorIs(t, err, ErrNoActiveHold)
}

func TestAttachContact_InactiveTrip(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	require.NoError(t, f.trips.DeactivateTrip(ctx, f.tripID))

	_, err = f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestClaimByCode_TransfersCohort(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	_, err = f.svc.HoldSeat(ctx, f.tripID, "A2", tokenA)
	require.NoError(t, err)
	attached, err := f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	require.NoError(t, err)

	// Code entry is case-insensitive
	claimed, err := f.svc.ClaimByCode(ctx, f.tripID, strings.ToLower(attached.ClaimCode), tokenB, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, claimed.SeatCodes)

	// The old session lost the holds, the new one owns them
	_, err = f.svc.ReleaseSeat(ctx, f.tripID, "A1", tokenA)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ReleaseSeat(ctx, f.tripID, "A1", tokenB)
	assert.NoError(t, err)
}

func TestClaimByCode_WhatsAppSecondFactor(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	attached, err := f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	require.NoError(t, err)

	_, err = f.svc.ClaimByCode(ctx, f.tripID, attached.ClaimCode, tokenB, "08999999999")
	assert.ErrorIs(t, err, ErrInvalidClaim)

	_, err = f.svc.ClaimByCode(ctx, f.tripID, attached.ClaimCode, tokenB, "08123456789")
	assert.NoError(t, err)
}

func TestClaimByCode_ExpiredHold(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	attached, err := f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	require.NoError(t, err)

	f.advance(11 * time.Minute)

	_, err = f.svc.ClaimByCode(ctx, f.tripID, attached.ClaimCode, tokenB, "")
	assert.ErrorIs(t, err, ErrInvalidClaim)
}

func TestClaimByCode_UnknownCode(t *testing.T) {
	f := newEngine(t, 2, 2)

	_, err := f.svc.ClaimByCode(context.Background(), f.tripID, "AAAA-BBBB", tokenB, "")
	assert.ErrorIs(t, err, ErrInvalidClaim)
}

func TestFinalizeBooking(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	_, err = f.svc.HoldSeat(ctx, f.tripID, "A2", tokenA)
	require.NoError(t, err)
	_, err = f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	require.NoError(t, err)

	result, err := f.svc.FinalizeBooking(ctx, f.tripID, []string{"A1", "A2"})
	require.NoError(t, err)
	assert.Regexp(t, bookingCodePattern, result.BookingCode)

	for _, code := range []string{"A1", "A2"} {
		stored := f.seat(t, code)
		assert.Equal(t, StatusBooked, stored.Status)
		assert.Nil(t, stored.HoldToken)
		assert.Nil(t, stored.HoldUntil)
		require.NotNil(t, stored.BookingCode)
		assert.Equal(t, result.BookingCode, *stored.BookingCode)
		require.NotNil(t, stored.BookedAt)
		// Contact data survives finalization for the operator's records
		require.NotNil(t, stored.CustomerName)
		assert.Equal(t, "Budi", *stored.CustomerName)
	}
}

func TestFinalizeBooking_AlreadyBookedNamesSeats(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.FinalizeBooking(ctx, f.tripID, []string{"A1"})
	require.NoError(t, err)

	_, err = f.svc.FinalizeBooking(ctx, f.tripID, []string{"A1", "A2"})
	require.ErrorIs(t, err, ErrAlreadyBooked)
	assert.Contains(t, err.Error(), "A1")

	// No partial effect: A2 is untouched
	assert.Equal(t, StatusAvailable, f.seat(t, "A2").Status)
}

func TestFinalizeBooking_MissingSeatNamesCodes(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.FinalizeBooking(ctx, f.tripID, []string{"A1", "Z9"})
	require.ErrorIs(t, err, ErrSeatNotFound)
	assert.Contains(t, err.Error(), "Z9")

	assert.Equal(t, StatusAvailable, f.seat(t, "A1").Status)
}

func TestFinalizeBooking_OverridesForeignHold(t *testing.T) {
	// The operator's word is final: a hold by any session can be booked
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	_, err = f.svc.FinalizeBooking(ctx, f.tripID, []string{"A1"})
	assert.NoError(t, err)
}

func TestConfirmBooking_NoBookingCode(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	result, err := f.svc.ConfirmBooking(ctx, f.tripID, []string{"A1"})
	require.NoError(t, err)
	assert.Empty(t, result.BookingCode)

	stored := f.seat(t, "A1")
	assert.Equal(t, StatusBooked, stored.Status)
	assert.Nil(t, stored.BookingCode)
	require.NotNil(t, stored.BookedAt)
}

func TestSeatMap_PublicProjection(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)
	_, err = f.svc.AttachContact(ctx, f.tripID, tokenA, "Budi", "08123456789")
	require.NoError(t, err)
	_, err = f.svc.FinalizeBooking(ctx, f.tripID, []string{"B2"})
	require.NoError(t, err)

	seatMap, err := f.svc.SeatMap(ctx, f.tripID)
	require.NoError(t, err)

	assert.Equal(t, f.tripID.String(), seatMap.Trip.ID)
	require.Len(t, seatMap.Seats, 4)

	byCode := make(map[string]SeatMapEntry)
	for _, entry := range seatMap.Seats {
		byCode[entry.Code] = entry
	}
	assert.Equal(t, StatusHold, byCode["A1"].Status)
	assert.NotNil(t, byCode["A1"].HoldUntil)
	assert.Equal(t, StatusAvailable, byCode["A2"].Status)
	assert.Equal(t, StatusBooked, byCode["B2"].Status)

	// Ordered by code
	assert.Equal(t, "A1", seatMap.Seats[0].Code)
	assert.Equal(t, "B2", seatMap.Seats[3].Code)
}

func TestSeatMap_SweepsExpiredHolds(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	f.advance(11 * time.Minute)

	seatMap, err := f.svc.SeatMap(ctx, f.tripID)
	require.NoError(t, err)

	for _, entry := range seatMap.Seats {
		assert.Equal(t, StatusAvailable, entry.Status)
		assert.Nil(t, entry.HoldUntil)
	}
}

func TestSeatMap_UnknownTrip(t *testing.T) {
	f := newEngine(t, 2, 2)

	_, err := f.svc.SeatMap(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestGenerateSeats_SkipsExisting(t *testing.T) {
	f := newEngine(t, 2, 2) // A1 A2 B1 B2 already exist
	ctx := context.Background()

	result, err := f.svc.GenerateSeats(ctx, f.tripID, GenerateSeatsRequest{
		Rows:        3,
		SeatsPerRow: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created) // C1, C2
	assert.Equal(t, 6, result.TotalSeats)
}

func TestGenerateSeats_ResetRegenerates(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	_, err := f.svc.HoldSeat(ctx, f.tripID, "A1", tokenA)
	require.NoError(t, err)

	result, err := f.svc.GenerateSeats(ctx, f.tripID, GenerateSeatsRequest{
		Rows:        1,
		SeatsPerRow: 2,
		Reset:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Deleted)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.TotalSeats)

	stored := f.seat(t, "A1")
	assert.Equal(t, StatusAvailable, stored.Status)
	assert.Nil(t, stored.HoldToken)
}

func TestGenerateSeats_PrefixAndCapacityReconcile(t *testing.T) {
	f := newEngine(t, 2, 2)
	ctx := context.Background()

	result, err := f.svc.GenerateSeats(ctx, f.tripID, GenerateSeatsRequest{
		Rows:        1,
		SeatsPerRow: 2,
		Prefix:      "l",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created) // LA1, LA2

	_, err = f.repo.GetByCodeForUpdate(ctx, f.tripID, "LA1")
	assert.NoError(t, err)

	trip, err := f.trips.GetActiveTrip(ctx, f.tripID)
	require.NoError(t, err)
	assert.Equal(t, 6, trip.CapacityTotal)
}
