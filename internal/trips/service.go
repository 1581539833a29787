package trips

import (
	"context"
	"errors"
	"fmt"

	"buslane/internal/shared/constants"
	"buslane/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTripNotFound = errors.New("trip not found")

type Service interface {
	SetCacheService(cacheService cache.Service)

	CreateTrip(ctx context.Context, req CreateTripRequest) (*TripResponse, error)
	GetActiveTrip(ctx context.Context, id uuid.UUID) (*Trip, error)
	ListActiveTrips(ctx context.Context) ([]TripResponse, error)
	DeactivateTrip(ctx context.Context, id uuid.UUID) error
	// ReconcileCapacity pins capacity_total to the live seat count after
	// seat provisioning changes the layout
	ReconcileCapacity(ctx context.Context, id uuid.UUID, seatCount int) error
}

type service struct {
	repo         Repository
	cacheService cache.Service
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) invalidateTripCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	// Listing staleness is bounded by the TTL even if this fails
	_ = s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_TRIPS_ALL)
}

func (s *service) CreateTrip(ctx context.Context, req CreateTripRequest) (*TripResponse, error) {
	trip := &Trip{
		ID:        uuid.New(),
		Title:     req.Title,
		BusType:   req.BusType,
		RouteFrom: req.RouteFrom,
		RouteTo:   req.RouteTo,
		DepartAt:  req.DepartAt,
		Price:     req.Price,
		AdminWA:   req.AdminWA,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	s.invalidateTripCache(ctx)

	resp := trip.ToResponse()
	return &resp, nil
}

func (s *service) GetActiveTrip(ctx context.Context, id uuid.UUID) (*Trip, error) {
	trip, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

func (s *service) ListActiveTrips(ctx context.Context) ([]TripResponse, error) {
	if s.cacheService != nil {
		var cached []TripResponse
		err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_TRIPS_ACTIVE, constants.TTL_TRIPS_ACTIVE,
			func() (interface{}, error) {
				return s.listActiveFromStore(ctx)
			}, &cached)
		if err == nil {
			return cached, nil
		}
		// Cache path failed; serve from the store
	}
	return s.listActiveFromStore(ctx)
}

func (s *service) listActiveFromStore(ctx context.Context) ([]TripResponse, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	result := make([]TripResponse, len(items))
	for i := range items {
		result[i] = items[i].ToResponse()
	}
	return result, nil
}

func (s *service) DeactivateTrip(ctx context.Context, id uuid.UUID) error {
	err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"is_active": false})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTripNotFound
		}
		return fmt.Errorf("failed to deactivate trip: %w", err)
	}

	s.invalidateTripCache(ctx)
	return nil
}

func (s *service) ReconcileCapacity(ctx context.Context, id uuid.UUID, seatCount int) error {
	err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"capacity_total": seatCount})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTripNotFound
		}
		return fmt.Errorf("failed to reconcile capacity: %w", err)
	}

	s.invalidateTripCache(ctx)
	return nil
}
