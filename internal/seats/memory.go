package seats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryRepository keeps seats in a map guarded by one mutex. A transaction
// holds the mutex for its whole body and rolls back by restoring a snapshot,
// which gives the same all-or-nothing and serialized-writers behavior the
// SQL store gets from row locks. It backs the package tests and the local
// no-database mode.
type MemoryRepository struct {
	mu    sync.Mutex
	store memStore
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: memStore{seats: make(map[uuid.UUID]*Seat)}}
}

func (m *MemoryRepository) InTx(_ context.Context, fn func(tx Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.store.clone()
	if err := fn(&memTx{store: &m.store}); err != nil {
		m.store = snapshot
		return err
	}
	return nil
}

func (m *MemoryRepository) ReleaseExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.releaseExpired(now)
}

func (m *MemoryRepository) CountActiveHolds(_ context.Context, tripID uuid.UUID, holdToken string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.countActiveHolds(tripID, holdToken, now)
}

func (m *MemoryRepository) GetByCodeForUpdate(_ context.Context, tripID uuid.UUID, code string) (*Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.getByCode(tripID, code)
}

func (m *MemoryRepository) ListActiveHoldsForUpdate(_ context.Context, tripID uuid.UUID, holdToken string, now time.Time) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.listActiveHolds(tripID, holdToken, now), nil
}

func (m *MemoryRepository) ListByClaimForUpdate(_ context.Context, tripID uuid.UUID, claimCode string, customerWA string, now time.Time) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.listByClaim(tripID, claimCode, customerWA, now), nil
}

func (m *MemoryRepository) ListByCodesForUpdate(_ context.Context, tripID uuid.UUID, codes []string) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.listByCodes(tripID, codes), nil
}

func (m *MemoryRepository) Save(_ context.Context, seat *Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.save(seat)
}

func (m *MemoryRepository) UpdateFields(_ context.Context, seatIDs []uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.updateFields(seatIDs, updates)
}

func (m *MemoryRepository) ListByTrip(_ context.Context, tripID uuid.UUID) ([]Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.listByTrip(tripID), nil
}

func (m *MemoryRepository) CreateBatch(_ context.Context, batch []Seat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.createBatch(batch)
}

func (m *MemoryRepository) DeleteByTrip(_ context.Context, tripID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.deleteByTrip(tripID), nil
}

func (m *MemoryRepository) CountByTrip(_ context.Context, tripID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.store.listByTrip(tripID))), nil
}

func (m *MemoryRepository) ListCodesByTrip(_ context.Context, tripID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seatsInTrip := m.store.listByTrip(tripID)
	codes := make([]string, len(seatsInTrip))
	for i := range seatsInTrip {
		codes[i] = seatsInTrip[i].Code
	}
	return codes, nil
}

// memTx is the view handed to InTx callbacks. The outer mutex is already
// held, so it hits the store directly; a nested InTx joins the transaction.
type memTx struct {
	store *memStore
}

func (t *memTx) InTx(_ context.Context, fn func(tx Repository) error) error {
	return fn(t)
}

func (t *memTx) ReleaseExpired(_ context.Context, now time.Time) (int64, error) {
	return t.store.releaseExpired(now)
}

func (t *memTx) CountActiveHolds(_ context.Context, tripID uuid.UUID, holdToken string, now time.Time) (int64, error) {
	return t.store.countActiveHolds(tripID, holdToken, now)
}

func (t *memTx) GetByCodeForUpdate(_ context.Context, tripID uuid.UUID, code string) (*Seat, error) {
	return t.store.getByCode(tripID, code)
}

func (t *memTx) ListActiveHoldsForUpdate(_ context.Context, tripID uuid.UUID, holdToken string, now time.Time) ([]Seat, error) {
	return t.store.listActiveHolds(tripID, holdToken, now), nil
}

func (t *memTx) ListByClaimForUpdate(_ context.Context, tripID uuid.UUID, claimCode string, customerWA string, now time.Time) ([]Seat, error) {
	return t.store.listByClaim(tripID, claimCode, customerWA, now), nil
}

func (t *memTx) ListByCodesForUpdate(_ context.Context, tripID uuid.UUID, codes []string) ([]Seat, error) {
	return t.store.listByCodes(tripID, codes), nil
}

func (t *memTx) Save(_ context.Context, seat *Seat) error {
	return t.store.save(seat)
}

func (t *memTx) UpdateFields(_ context.Context, seatIDs []uuid.UUID, updates map[string]interface{}) error {
	return t.store.updateFields(seatIDs, updates)
}

func (t *memTx) ListByTrip(_ context.Context, tripID uuid.UUID) ([]Seat, error) {
	return t.store.listByTrip(tripID), nil
}

func (t *memTx) CreateBatch(_ context.Context, batch []Seat) error {
	return t.store.createBatch(batch)
}

func (t *memTx) DeleteByTrip(_ context.Context, tripID uuid.UUID) (int64, error) {
	return t.store.deleteByTrip(tripID), nil
}

func (t *memTx) CountByTrip(_ context.Context, tripID uuid.UUID) (int64, error) {
	return int64(len(t.store.listByTrip(tripID))), nil
}

func (t *memTx) ListCodesByTrip(_ context.Context, tripID uuid.UUID) ([]string, error) {
	seatsInTrip := t.store.listByTrip(tripID)
	codes := make([]string, len(seatsInTrip))
	for i := range seatsInTrip {
		codes[i] = seatsInTrip[i].Code
	}
	return codes, nil
}

// memStore holds the actual data; all methods assume the caller serialized
// access.
type memStore struct {
	seats map[uuid.UUID]*Seat
}

func (s *memStore) clone() memStore {
	cp := memStore{seats: make(map[uuid.UUID]*Seat, len(s.seats))}
	for id, seat := range s.seats {
		dup := *seat
		cp.seats[id] = &dup
	}
	return cp
}

func (s *memStore) releaseExpired(now time.Time) (int64, error) {
	var released int64
	for _, seat := range s.seats {
		if seat.Status == StatusHold && seat.HoldUntil != nil && seat.HoldUntil.Before(now) {
			seat.Status = StatusAvailable
			seat.clearHoldState()
			released++
		}
	}
	return released, nil
}

func (s *memStore) countActiveHolds(tripID uuid.UUID, holdToken string, now time.Time) (int64, error) {
	var count int64
	for _, seat := range s.seats {
		if seat.TripID == tripID && seat.HasActiveHold(now) &&
			seat.HoldToken != nil && *seat.HoldToken == holdToken {
			count++
		}
	}
	return count, nil
}

func (s *memStore) getByCode(tripID uuid.UUID, code string) (*Seat, error) {
	for _, seat := range s.seats {
		if seat.TripID == tripID && seat.Code == code {
			cp := *seat
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) listActiveHolds(tripID uuid.UUID, holdToken string, now time.Time) []Seat {
	var result []Seat
	for _, seat := range s.seats {
		if seat.TripID == tripID && seat.HasActiveHold(now) &&
			seat.HoldToken != nil && *seat.HoldToken == holdToken {
			result = append(result, *seat)
		}
	}
	sortByCode(result)
	return result
}

func (s *memStore) listByClaim(tripID uuid.UUID, claimCode string, customerWA string, now time.Time) []Seat {
	var result []Seat
	for _, seat := range s.seats {
		if seat.TripID != tripID || !seat.HasActiveHold(now) {
			continue
		}
		if seat.ClaimCode == nil || *seat.ClaimCode != claimCode {
			continue
		}
		if customerWA != "" && (seat.CustomerWA == nil || *seat.CustomerWA != customerWA) {
			continue
		}
		result = append(result, *seat)
	}
	sortByCode(result)
	return result
}

func (s *memStore) listByCodes(tripID uuid.UUID, codes []string) []Seat {
	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	var result []Seat
	for _, seat := range s.seats {
		if seat.TripID == tripID && wanted[seat.Code] {
			result = append(result, *seat)
		}
	}
	sortByCode(result)
	return result
}

func (s *memStore) save(seat *Seat) error {
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	cp := *seat
	s.seats[seat.ID] = &cp
	return nil
}

func (s *memStore) updateFields(seatIDs []uuid.UUID, updates map[string]interface{}) error {
	for _, id := range seatIDs {
		seat, ok := s.seats[id]
		if !ok {
			continue
		}
		applyUpdates(seat, updates)
	}
	return nil
}

func (s *memStore) listByTrip(tripID uuid.UUID) []Seat {
	var result []Seat
	for _, seat := range s.seats {
		if seat.TripID == tripID {
			result = append(result, *seat)
		}
	}
	sortByCode(result)
	return result
}

func (s *memStore) createBatch(batch []Seat) error {
	for i := range batch {
		seat := batch[i]
		if seat.ID == uuid.Nil {
			seat.ID = uuid.New()
		}
		s.seats[seat.ID] = &seat
	}
	return nil
}

func (s *memStore) deleteByTrip(tripID uuid.UUID) int64 {
	var deleted int64
	for id, seat := range s.seats {
		if seat.TripID == tripID {
			delete(s.seats, id)
			deleted++
		}
	}
	return deleted
}

func sortByCode(seatList []Seat) {
	sort.Slice(seatList, func(i, j int) bool {
		return seatList[i].Code < seatList[j].Code
	})
}

func applyUpdates(seat *Seat, updates map[string]interface{}) {
	for field, value := range updates {
		switch field {
		case "status":
			seat.Status = value.(Status)
		case "hold_token":
			seat.HoldToken = asStringPtr(value)
		case "hold_until":
			seat.HoldUntil = asTimePtr(value)
		case "customer_name":
			seat.CustomerName = asStringPtr(value)
		case "customer_wa":
			seat.CustomerWA = asStringPtr(value)
		case "claim_code":
			seat.ClaimCode = asStringPtr(value)
		case "booking_code":
			seat.BookingCode = asStringPtr(value)
		case "booked_at":
			seat.BookedAt = asTimePtr(value)
		}
	}
}

func asStringPtr(value interface{}) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

func asTimePtr(value interface{}) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}
