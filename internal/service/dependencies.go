package service

import (
	"context"
	"time"

	"restaurant-analytics-service/internal/model"
)

// SummaryStore is the persistence boundary for summary rows. The gorm
// repository satisfies it in production; tests use in-memory fakes.
type SummaryStore interface {
	Get(ctx context.Context, reportDate time.Time, periodType model.PeriodType) (*model.SalesSummary, error)
	Create(ctx context.Context, row *model.SalesSummary) error
	Upsert(ctx context.Context, row *model.SalesSummary) error
	UpdateVersioned(ctx context.Context, row *model.SalesSummary) error
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.SalesSummary, error)
	ListByType(ctx context.Context, periodType model.PeriodType) ([]model.SalesSummary, error)
}

// OrderSource yields order projections with their line items for a
// timestamp window.
type OrderSource interface {
	OrdersWithItems(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

// ReservationSource counts reservations whose time falls in a window.
type ReservationSource interface {
	CountInRange(ctx context.Context, from, to time.Time) (int64, error)
}
