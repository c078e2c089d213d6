package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-analytics-service/internal/model"
)

var (
	// ErrNotFound means no row exists for the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means an insert hit the uniqueness invariant or a
	// versioned update lost the race; callers re-read and retry.
	ErrConflict = errors.New("summary row conflict")
)

// SummaryRepository is the persistence boundary for sales_summaries. It
// enforces one row per (report_date, report_type) and carries no business
// logic.
type SummaryRepository struct {
	db *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Get(ctx context.Context, reportDate time.Time, periodType model.PeriodType) (*model.SalesSummary, error) {
	var row model.SalesSummary
	err := r.db.WithContext(ctx).
		Where("report_date = ? AND report_type = ?", reportDate, periodType).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a fresh row at version 1. A concurrent insert for the same
// key surfaces as ErrConflict.
func (r *SummaryRepository) Create(ctx context.Context, row *model.SalesSummary) error {
	row.Version = 1
	err := r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// Upsert replaces every field of the key's row, bumping the version. Used
// by full regeneration, which is deliberately last-writer-wins.
func (r *SummaryRepository) Upsert(ctx context.Context, row *model.SalesSummary) error {
	row.Version++
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "report_date"}, {Name: "report_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"period_start", "period_end",
				"total_revenue", "total_orders", "average_order_value",
				"total_customers", "total_reservations",
				"most_popular_product_id", "least_popular_product_id",
				"top_products", "category_sales", "employee_performance",
				"version", "updated_at",
			}),
		}).
		Create(row).Error
}

// UpdateVersioned writes the row only if nobody else has touched it since
// it was read; a stale version surfaces as ErrConflict.
func (r *SummaryRepository) UpdateVersioned(ctx context.Context, row *model.SalesSummary) error {
	readVersion := row.Version
	row.Version++
	res := r.db.WithContext(ctx).
		Model(&model.SalesSummary{}).
		Where("report_date = ? AND report_type = ? AND version = ?", row.ReportDate, row.ReportType, readVersion).
		Updates(map[string]interface{}{
			"total_revenue":            row.TotalRevenue,
			"total_orders":             row.TotalOrders,
			"average_order_value":      row.AverageOrderValue,
			"total_customers":          row.TotalCustomers,
			"total_reservations":       row.TotalReservations,
			"most_popular_product_id":  row.MostPopularProductID,
			"least_popular_product_id": row.LeastPopularProductID,
			"top_products":             row.TopProducts,
			"category_sales":           row.CategorySales,
			"employee_performance":     row.EmployeePerformance,
			"version":                  row.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *SummaryRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.SalesSummary, error) {
	var rows []model.SalesSummary
	err := r.db.WithContext(ctx).
		Where("report_date BETWEEN ? AND ?", from, to).
		Order("report_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *SummaryRepository) ListByType(ctx context.Context, periodType model.PeriodType) ([]model.SalesSummary, error) {
	var rows []model.SalesSummary
	err := r.db.WithContext(ctx).
		Where("report_type = ?", periodType).
		Order("report_date DESC").
		Find(&rows).Error
	return rows, err
}
