package db

import (
	"context"

	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(gdb *gorm.DB) *AlertRepository {
	return &AlertRepository{db: gdb}
}

// Insert appends one alert. The SHA unique index makes a second insert
// for the same push fail with a duplicate-key error (see IsDuplicateKey);
// rows are never updated afterwards.
func (r *AlertRepository) Insert(ctx context.Context, alert *Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}
