package trips

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func TestCreateTrip(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.CreateTrip(context.Background(), CreateTripRequest{
		Title:     "Jakarta - Bandung Pagi",
		BusType:   "Executive",
		RouteFrom: "Jakarta",
		RouteTo:   "Bandung",
		DepartAt:  time.Now().Add(48 * time.Hour),
		Price:     150000,
		AdminWA:   "628111222333",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.True(t, resp.IsActive)
	assert.Equal(t, int64(150000), resp.Price)
	assert.Equal(t, "628111222333", resp.AdminWA)
}

func TestListActiveTrips_OrderedByDeparture(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	base := time.Now()
	later, err := svc.CreateTrip(ctx, CreateTripRequest{
		Title: "Trip Sore", RouteFrom: "Jakarta", RouteTo: "Bandung",
		DepartAt: base.Add(10 * time.Hour), Price: 100000,
	})
	require.NoError(t, err)
	earlier, err := svc.CreateTrip(ctx, CreateTripRequest{
		Title: "Trip Pagi", RouteFrom: "Jakarta", RouteTo: "Bandung",
		DepartAt: base.Add(2 * time.Hour), Price: 100000,
	})
	require.NoError(t, err)

	listed, err := svc.ListActiveTrips(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, earlier.ID, listed[0].ID)
	assert.Equal(t, later.ID, listed[1].ID)
}

func TestDeactivateTrip_HidesFromListing(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTrip(ctx, CreateTripRequest{
		Title: "Trip Malam", RouteFrom: "Surabaya", RouteTo: "Malang",
		DepartAt: time.Now().Add(24 * time.Hour), Price: 90000,
	})
	require.NoError(t, err)

	tripID := uuid.MustParse(created.ID)
	require.NoError(t, svc.DeactivateTrip(ctx, tripID))

	listed, err := svc.ListActiveTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = svc.GetActiveTrip(ctx, tripID)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestDeactivateTrip_NotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.DeactivateTrip(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestReconcileCapacity(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateTrip(ctx, CreateTripRequest{
		Title: "Trip Siang", RouteFrom: "Yogyakarta", RouteTo: "Solo",
		DepartAt: time.Now().Add(12 * time.Hour), Price: 60000,
	})
	require.NoError(t, err)

	tripID := uuid.MustParse(created.ID)
	require.NoError(t, svc.ReconcileCapacity(ctx, tripID, 28))

	trip, err := repo.GetByID(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, 28, trip.CapacityTotal)
}
