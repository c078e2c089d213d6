package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"restaurant-analytics-service/internal/model"
	"restaurant-analytics-service/internal/repository"
)

// AnalyticsService answers period queries through a fixed fallback chain:
// precomputed row, regenerate-then-retry, live aggregation over raw orders.
// Callers see a final result or a terminal error, never a partial one.
type AnalyticsService struct {
	summaries   SummaryStore
	orders      OrderSource
	regenerator *Regenerator
	log         zerolog.Logger
	now         func() time.Time
}

func NewAnalyticsService(summaries SummaryStore, orders OrderSource, regenerator *Regenerator, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		summaries:   summaries,
		orders:      orders,
		regenerator: regenerator,
		log:         log,
		now:         time.Now,
	}
}

// GetTopProducts returns up to limit entries of the period's product
// ranking. A corrupt blob triggers one regeneration; if that does not
// produce a readable list the result degrades to the most-popular reference
// or an empty list rather than failing the caller.
func (s *AnalyticsService) GetTopProducts(ctx context.Context, periodType model.PeriodType, limit int) ([]model.TopProductEntry, error) {
	if limit <= 0 || limit > model.TopProductsLimit {
		limit = model.TopProductsLimit
	}
	p := model.ResolvePeriod(periodType, s.now())

	row, err := s.lookup(ctx, p)
	if err == nil {
		entries, derr := row.DecodeTopProducts()
		if derr == nil {
			return trimEntries(entries, limit), nil
		}

		s.log.Warn().Err(fmt.Errorf("%w: %v", ErrDataCorruption, derr)).
			Str("period", string(p.Type)).Time("report_date", p.ReportDate).
			Msg("top products blob unreadable, regenerating")

		if fresh, rerr := s.regenerator.RegeneratePeriod(ctx, p); rerr == nil {
			if entries, derr := fresh.DecodeTopProducts(); derr == nil {
				return trimEntries(entries, limit), nil
			}
		}
		return degradedTopProducts(row), nil
	}

	entries, lerr := s.liveTopProducts(ctx, p, limit)
	if lerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrFallbackExhausted, lerr)
	}
	return entries, nil
}

// GetRevenueAnalytics returns the period's headline totals.
func (s *AnalyticsService) GetRevenueAnalytics(ctx context.Context, periodType model.PeriodType) (*model.RevenueAnalytics, error) {
	p := model.ResolvePeriod(periodType, s.now())

	row, err := s.lookup(ctx, p)
	if err == nil {
		revenue := row.Revenue()
		return &revenue, nil
	}

	live, lerr := s.liveSummary(ctx, p)
	if lerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrFallbackExhausted, lerr)
	}
	revenue := live.Revenue()
	return &revenue, nil
}

// GetCategorySales returns cumulative revenue per product category.
func (s *AnalyticsService) GetCategorySales(ctx context.Context, periodType model.PeriodType) (model.CategorySales, error) {
	p := model.ResolvePeriod(periodType, s.now())

	row, err := s.lookup(ctx, p)
	if err == nil {
		sales, derr := row.DecodeCategorySales()
		if derr == nil {
			return sales, nil
		}
		s.log.Warn().Err(fmt.Errorf("%w: %v", ErrDataCorruption, derr)).
			Str("period", string(p.Type)).Msg("category sales blob unreadable, regenerating")
		if fresh, rerr := s.regenerator.RegeneratePeriod(ctx, p); rerr == nil {
			if sales, derr := fresh.DecodeCategorySales(); derr == nil {
				return sales, nil
			}
		}
		return model.CategorySales{}, nil
	}

	live, lerr := s.liveSummary(ctx, p)
	if lerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrFallbackExhausted, lerr)
	}
	return live.DecodeCategorySales()
}

// GetEmployeePerformance returns per-employee stats with the top performer
// flagged.
func (s *AnalyticsService) GetEmployeePerformance(ctx context.Context, periodType model.PeriodType) (*model.EmployeePerformance, error) {
	p := model.ResolvePeriod(periodType, s.now())

	row, err := s.lookup(ctx, p)
	if err == nil {
		perf, derr := row.DecodeEmployeePerformance()
		if derr == nil {
			return perf, nil
		}
		s.log.Warn().Err(fmt.Errorf("%w: %v", ErrDataCorruption, derr)).
			Str("period", string(p.Type)).Msg("employee performance blob unreadable, regenerating")
		if fresh, rerr := s.regenerator.RegeneratePeriod(ctx, p); rerr == nil {
			if perf, derr := fresh.DecodeEmployeePerformance(); derr == nil {
				return perf, nil
			}
		}
		return &model.EmployeePerformance{}, nil
	}

	live, lerr := s.liveSummary(ctx, p)
	if lerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrFallbackExhausted, lerr)
	}
	return live.DecodeEmployeePerformance()
}

// ListSummaries surfaces the stored rows in a date range.
func (s *AnalyticsService) ListSummaries(ctx context.Context, from, to time.Time) ([]model.SalesSummary, error) {
	return s.summaries.ListByDateRange(ctx, model.DateOf(from), model.DateOf(to))
}

// ListSummariesByType surfaces all stored rows of one period type.
func (s *AnalyticsService) ListSummariesByType(ctx context.Context, periodType model.PeriodType) ([]model.SalesSummary, error) {
	return s.summaries.ListByType(ctx, periodType)
}

// lookup is the precomputed tier: hit, or regenerate once and retry once.
func (s *AnalyticsService) lookup(ctx context.Context, p model.Period) (*model.SalesSummary, error) {
	row, err := s.summaries.Get(ctx, p.ReportDate, p.Type)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error().Err(err).Str("period", string(p.Type)).Msg("summary lookup failed")
		return nil, err
	}

	if _, rerr := s.regenerator.RegeneratePeriod(ctx, p); rerr != nil {
		s.log.Warn().Err(rerr).Str("period", string(p.Type)).
			Time("report_date", p.ReportDate).Msg("fallback regeneration failed")
		return nil, ErrSummaryNotFound
	}

	row, err = s.summaries.Get(ctx, p.ReportDate, p.Type)
	if err != nil {
		return nil, ErrSummaryNotFound
	}
	return row, nil
}

// liveSummary is the last tier: aggregate raw orders from the period start
// to now, with no persistence side effect. "Now" rather than periodEnd,
// since the period may still be open.
func (s *AnalyticsService) liveSummary(ctx context.Context, p model.Period) (*model.SalesSummary, error) {
	from, _ := p.Bounds()
	orders, err := s.orders.OrdersWithItems(ctx, from, s.now())
	if err != nil {
		return nil, err
	}
	return buildSummary(p, orders, 0)
}

func (s *AnalyticsService) liveTopProducts(ctx context.Context, p model.Period, limit int) ([]model.TopProductEntry, error) {
	from, _ := p.Bounds()
	orders, err := s.orders.OrdersWithItems(ctx, from, s.now())
	if err != nil {
		return nil, err
	}
	return trimEntries(buildTopProducts(orders), limit), nil
}

// degradedTopProducts builds the single-entry result used when a corrupt
// row could not be repaired.
func degradedTopProducts(row *model.SalesSummary) []model.TopProductEntry {
	if row.MostPopularProductID == nil {
		return []model.TopProductEntry{}
	}
	return []model.TopProductEntry{{ProductID: *row.MostPopularProductID}}
}

func trimEntries(entries []model.TopProductEntry, limit int) []model.TopProductEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
