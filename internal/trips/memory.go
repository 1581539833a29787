package trips

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryRepository is an in-memory Repository used by package tests and
// the local no-database mode.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Trip
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*Trip)}
}

func (m *MemoryRepository) Create(_ context.Context, trip *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	cp := *trip
	m.items[trip.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trip, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *trip
	return &cp, nil
}

func (m *MemoryRepository) GetActiveByID(_ context.Context, id uuid.UUID) (*Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trip, ok := m.items[id]
	if !ok || !trip.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *trip
	return &cp, nil
}

func (m *MemoryRepository) ListActive(_ context.Context) ([]Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Trip
	for _, trip := range m.items {
		if trip.IsActive {
			result = append(result, *trip)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartAt.Before(result[j].DepartAt)
	})
	return result, nil
}

func (m *MemoryRepository) UpdateFields(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for field, value := range updates {
		switch field {
		case "is_active":
			trip.IsActive = value.(bool)
		case "capacity_total":
			trip.CapacityTotal = value.(int)
		case "admin_wa":
			trip.AdminWA = value.(string)
		case "price":
			trip.Price = value.(int64)
		}
	}
	return nil
}
