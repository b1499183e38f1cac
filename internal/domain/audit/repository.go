package audit

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByEquipment(ctx context.Context, equipmentID int64) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ListByEquipment returns entries oldest first.
func (r *repository) ListByEquipment(ctx context.Context, equipmentID int64) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("equipment_id = ?", equipmentID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
