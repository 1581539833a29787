package seats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the seat store contract. The ...ForUpdate methods must be
// called inside InTx; they lock the selected rows until the transaction
// ends. Multi-seat selections come back ordered by seat code so concurrent
// transactions acquire locks in the same order.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// ReleaseExpired returns lapsed holds to AVAILABLE and reports how
	// many rows it touched
	ReleaseExpired(ctx context.Context, now time.Time) (int64, error)

	CountActiveHolds(ctx context.Context, tripID uuid.UUID, holdToken string, now time.Time) (int64, error)
	GetByCodeForUpdate(ctx context.Context, tripID uuid.UUID, code string) (*Seat, error)
	ListActiveHoldsForUpdate(ctx context.Context, tripID uuid.UUID, holdToken string, now time.Time) ([]Seat, error)
	ListByClaimForUpdate(ctx context.Context, tripID uuid.UUID, claimCode string, customerWA string, now time.Time) ([]Seat, error)
	ListByCodesForUpdate(ctx context.Context, tripID uuid.UUID, codes []string) ([]Seat, error)

	Save(ctx context.Context, seat *Seat) error
	UpdateFields(ctx context.Context, seatIDs []uuid.UUID, updates map[string]interface{}) error

	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]Seat, error)

	// Provisioning
	CreateBatch(ctx context.Context, batch []Seat) error
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
	CountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
	ListCodesByTrip(ctx context.Context, tripID uuid.UUID) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	// booking_code is left alone: it only exists on BOOKED rows, which the
	// sweep never matches
	res := r.db.WithContext(ctx).Model(&Seat{}).
		Where("status = ? AND hold_until < ?", StatusHold, now).
		Updates(map[string]interface{}{
			"status":        StatusAvailable,
			"hold_token":    nil,
			"hold_until":    nil,
			"customer_name": nil,
			"customer_wa":   nil,
			"claim_code":    nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CountActiveHolds(ctx context.Context, tripID uuid.UUID, holdToken string, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("trip_id = ? AND status = ? AND hold_token = ? AND hold_until >= ?",
			tripID, StatusHold, holdToken, now).
		Count(&count).Error
	return count, err
}

func (r *repository) GetByCodeForUpdate(ctx context.Context, tripID uuid.UUID, code string) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trip_id = ? AND code = ?", tripID, code).
		First(&seat).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) ListActiveHoldsForUpdate(ctx context.Context, tripID uuid.UUID, holdToken string, now time.Time) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trip_id = ? AND status = ? AND hold_token = ? AND hold_until >= ?",
			tripID, StatusHold, holdToken, now).
		Order("code ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) ListByClaimForUpdate(ctx context.Context, tripID uuid.UUID, claimCode string, customerWA string, now time.Time) ([]Seat, error) {
	db := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trip_id = ? AND status = ? AND claim_code = ? AND hold_until >= ?",
			tripID, StatusHold, claimCode, now)
	if customerWA != "" {
		db = db.Where("customer_wa = ?", customerWA)
	}

	var result []Seat
	err := db.Order("code ASC").Find(&result).Error
	return result, err
}

func (r *repository) ListByCodesForUpdate(ctx context.Context, tripID uuid.UUID, codes []string) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trip_id = ? AND code IN ?", tripID, codes).
		Order("code ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) Save(ctx context.Context, seat *Seat) error {
	return r.db.WithContext(ctx).Save(seat).Error
}

func (r *repository) UpdateFields(ctx context.Context, seatIDs []uuid.UUID, updates map[string]interface{}) error {
	if len(seatIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&Seat{}).
		Where("id IN ?", seatIDs).
		Updates(updates).Error
}

func (r *repository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("code ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) CreateBatch(ctx context.Context, batch []Seat) error {
	if len(batch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(batch, 500).Error
}

func (r *repository) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("trip_id = ?", tripID).Delete(&Seat{})
	return res.RowsAffected, res.Error
}

func (r *repository) CountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("trip_id = ?", tripID).
		Count(&count).Error
	return count, err
}

func (r *repository) ListCodesByTrip(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&Seat{}).
		Where("trip_id = ?", tripID).
		Pluck("code", &codes).Error
	return codes, err
}
