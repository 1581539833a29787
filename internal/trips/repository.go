package trips

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	// GetActiveByID returns the trip only when it is still active
	GetActiveByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	// ListActive returns active trips ordered by departure, soonest first
	ListActive(ctx context.Context) ([]Trip, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trip *Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) GetActiveByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Trip, error) {
	var result []Trip
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("depart_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&Trip{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
