package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"restaurant-analytics-service/internal/model"
	"restaurant-analytics-service/internal/repository"
)

// conflictRetries bounds the optimistic-lock retry loop on the incremental
// path. Each retry re-reads the row before re-applying the order.
const conflictRetries = 3

// nonDailyPeriods are the period types that only absorb an order
// incrementally while the order's date is inside the current period.
var nonDailyPeriods = []model.PeriodType{model.PeriodWeekly, model.PeriodMonthly, model.PeriodYearly}

// IncrementalUpdater applies one order's effect to every summary row whose
// period currently contains the order's date. It runs on the goroutine that
// delivers the order event and never lets a failure travel back to the
// order operation: everything is caught and logged here.
type IncrementalUpdater struct {
	summaries   SummaryStore
	regenerator *Regenerator
	log         zerolog.Logger
	now         func() time.Time
}

func NewIncrementalUpdater(summaries SummaryStore, regenerator *Regenerator, log zerolog.Logger) *IncrementalUpdater {
	return &IncrementalUpdater{
		summaries:   summaries,
		regenerator: regenerator,
		log:         log,
		now:         time.Now,
	}
}

func (u *IncrementalUpdater) OrderCreated(ctx context.Context, order model.Order) {
	u.apply(ctx, order, "order created")
}

func (u *IncrementalUpdater) OrderUpdated(ctx context.Context, order model.Order) {
	u.apply(ctx, order, "order updated")
}

func (u *IncrementalUpdater) OrderCompleted(ctx context.Context, order model.Order) {
	u.apply(ctx, order, "order completed")
}

func (u *IncrementalUpdater) apply(ctx context.Context, order model.Order, event string) {
	defer func() {
		if rec := recover(); rec != nil {
			u.log.Error().Interface("panic", rec).Str("event", event).
				Stringer("order_id", order.ID).Msg("summary update panicked")
		}
	}()

	// The daily row always absorbs the order, lazily creating the row for
	// the order's own date.
	daily := model.ResolvePeriod(model.PeriodDaily, order.CreatedAt)
	if err := u.patch(ctx, daily, order, true); err != nil {
		u.log.Error().Err(err).Str("event", event).
			Stringer("order_id", order.ID).Str("period", string(model.PeriodDaily)).
			Msg("summary update failed")
	}

	// Non-daily rows are only patched while the order date sits inside the
	// current period; past periods are left to the scheduled rollups.
	now := u.now()
	for _, periodType := range nonDailyPeriods {
		current := model.ResolvePeriod(periodType, now)
		if !current.Contains(order.CreatedAt) {
			continue
		}
		err := u.patch(ctx, current, order, false)
		if errors.Is(err, ErrSummaryNotFound) {
			// Self-heal: no row to patch, rebuild the whole period instead.
			if _, rerr := u.regenerator.RegeneratePeriod(ctx, current); rerr != nil {
				u.log.Error().Err(rerr).Str("event", event).
					Stringer("order_id", order.ID).Str("period", string(periodType)).
					Msg("fallback regeneration failed")
			}
			continue
		}
		if err != nil {
			u.log.Error().Err(err).Str("event", event).
				Stringer("order_id", order.ID).Str("period", string(periodType)).
				Msg("summary update failed")
		}
	}
}

// patch read-modify-writes the row under optimistic versioning, retrying on
// conflict with a fresh read.
func (u *IncrementalUpdater) patch(ctx context.Context, p model.Period, order model.Order, createIfMissing bool) error {
	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		row, err := u.summaries.Get(ctx, p.ReportDate, p.Type)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if !createIfMissing {
				return ErrSummaryNotFound
			}
			row = model.NewSalesSummary(p)
			if err := u.applyOrder(row, order); err != nil {
				return err
			}
			if err := u.summaries.Create(ctx, row); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					lastErr = err
					continue
				}
				return err
			}
			return nil
		case err != nil:
			return err
		}

		if err := u.applyOrder(row, order); err != nil {
			return err
		}
		if err := u.summaries.UpdateVersioned(ctx, row); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return lastErr
}

// applyOrder folds a single order into the row in memory.
func (u *IncrementalUpdater) applyOrder(row *model.SalesSummary, order model.Order) error {
	row.TotalRevenue = row.TotalRevenue.Add(order.TotalAmount)
	row.TotalOrders++
	row.AverageOrderValue = averageOrderValue(row.TotalRevenue, row.TotalOrders)

	// Coarse counter: one per order, not deduplicated against earlier
	// orders by the same person within the period.
	row.TotalCustomers++

	merged, err := mergeTopProducts(row.TopProducts, order.Items)
	if err != nil {
		return err
	}
	row.TopProducts = merged
	if entries, derr := row.DecodeTopProducts(); derr == nil && len(entries) > 0 {
		most := entries[0].ProductID
		row.MostPopularProductID = &most
	}

	if err := u.mergeCategorySales(row, order); err != nil {
		return err
	}
	return u.mergeEmployeeStats(row, order)
}

func (u *IncrementalUpdater) mergeCategorySales(row *model.SalesSummary, order model.Order) error {
	sales, err := row.DecodeCategorySales()
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		current := decimal.Zero
		if raw, ok := sales[item.Category]; ok {
			current, err = decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("%w: category %q: %v", ErrDataCorruption, item.Category, err)
			}
		}
		sales[item.Category] = current.Add(item.LineTotal).StringFixed(2)
	}
	return row.SetCategorySales(sales)
}

func (u *IncrementalUpdater) mergeEmployeeStats(row *model.SalesSummary, order model.Order) error {
	perf, err := row.DecodeEmployeePerformance()
	if err != nil {
		return err
	}

	var itemsSold int64
	for _, item := range order.Items {
		itemsSold += item.Quantity
	}

	found := false
	for i := range perf.Employees {
		if perf.Employees[i].UserID == order.UserID {
			stat := &perf.Employees[i]
			stat.OrderCount++
			stat.TotalRevenue = stat.TotalRevenue.Add(order.TotalAmount)
			stat.AverageOrderValue = averageOrderValue(stat.TotalRevenue, stat.OrderCount)
			stat.ItemsSold += itemsSold
			found = true
			break
		}
	}
	if !found {
		perf.Employees = append(perf.Employees, model.EmployeeStat{
			UserID:            order.UserID,
			UserName:          order.UserName,
			OrderCount:        1,
			TotalRevenue:      order.TotalAmount,
			AverageOrderValue: averageOrderValue(order.TotalAmount, 1),
			ItemsSold:         itemsSold,
		})
	}

	return row.SetEmployeePerformance(rankEmployees(perf.Employees))
}
