package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"restaurant-analytics-service/internal/model"
)

// OrderRepository reads order projections owned by the order service.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrdersWithItems loads all orders created in [from, to] together with
// their line items.
func (r *OrderRepository) OrdersWithItems(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at BETWEEN ? AND ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
