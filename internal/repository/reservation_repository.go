package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ReservationRepository answers the single question analytics has about
// reservations: how many fall inside a window.
type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) CountInRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("reservations").
		Where("reservation_time BETWEEN ? AND ?", from, to).
		Count(&count).Error
	return count, err
}
