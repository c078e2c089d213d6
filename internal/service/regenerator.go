package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"restaurant-analytics-service/internal/model"
	"restaurant-analytics-service/internal/repository"
)

const defaultGenerationBudget = 5 * time.Minute

// Regenerator rebuilds a summary row from scratch by scanning raw orders,
// items and reservations in the period window. It backs both the scheduled
// rollups and the self-healing fallbacks at write and query time.
type Regenerator struct {
	summaries    SummaryStore
	orders       OrderSource
	reservations ReservationSource
	guard        *ResourceGuard
	budget       time.Duration
	log          zerolog.Logger
}

func NewRegenerator(summaries SummaryStore, orders OrderSource, reservations ReservationSource, guard *ResourceGuard, budget time.Duration, log zerolog.Logger) *Regenerator {
	if budget <= 0 {
		budget = defaultGenerationBudget
	}
	return &Regenerator{
		summaries:    summaries,
		orders:       orders,
		reservations: reservations,
		guard:        guard,
		budget:       budget,
		log:          log,
	}
}

// Regenerate resolves the period for ref and rebuilds its summary row.
func (r *Regenerator) Regenerate(ctx context.Context, periodType model.PeriodType, ref time.Time) (*model.SalesSummary, error) {
	return r.RegeneratePeriod(ctx, model.ResolvePeriod(periodType, ref))
}

// RegeneratePeriod rebuilds the summary for an already-resolved period.
// It runs to completion, timeout or failure; a partial row is never
// persisted.
func (r *Regenerator) RegeneratePeriod(ctx context.Context, p model.Period) (*model.SalesSummary, error) {
	if err := r.guard.Check(); err != nil {
		return nil, err
	}

	step := GenerationStepUpdate
	existing, err := r.summaries.Get(ctx, p.ReportDate, p.Type)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		step = GenerationStepCreate
	case err != nil:
		return nil, &GenerationError{Step: step, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	started := time.Now()
	row, err := r.compute(ctx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrGenerationTimeout
		}
		return nil, &GenerationError{Step: step, Err: err}
	}

	if existing != nil {
		row.ID = existing.ID
		row.Version = existing.Version
	}
	if err := r.summaries.Upsert(ctx, row); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrGenerationTimeout
		}
		return nil, &GenerationError{Step: step, Err: err}
	}

	r.log.Info().
		Str("period", string(p.Type)).
		Time("report_date", p.ReportDate).
		Str("step", step).
		Dur("took", time.Since(started)).
		Int64("orders", row.TotalOrders).
		Msg("summary regenerated")

	return row, nil
}

func (r *Regenerator) compute(ctx context.Context, p model.Period) (*model.SalesSummary, error) {
	from, to := p.Bounds()

	orders, err := r.orders.OrdersWithItems(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reservations, err := r.reservations.CountInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return buildSummary(p, orders, reservations)
}
