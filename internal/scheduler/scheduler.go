package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"restaurant-analytics-service/internal/model"
)

// Regenerator is the slice of the engine the scheduler needs.
type Regenerator interface {
	Regenerate(ctx context.Context, periodType model.PeriodType, ref time.Time) (*model.SalesSummary, error)
}

// job is one periodic rollup: when it next fires and which period it
// closes. Every job uses "yesterday relative to the run time" as the
// reference date, which lands inside the just-completed period because the
// run times sit right after each period boundary.
type job struct {
	name       string
	periodType model.PeriodType
	next       func(now time.Time) time.Time
}

// Worker drives the scheduled rollups: daily at 01:00 for the prior day,
// weekly on Monday at 02:00, monthly on the 1st at 03:00, yearly on
// January 1st at 04:00.
type Worker struct {
	regen Regenerator
	log   zerolog.Logger
	jobs  []job
	now   func() time.Time

	ctx  context.Context
	stop context.CancelFunc
	done chan struct{}
}

func New(regen Regenerator, log zerolog.Logger) *Worker {
	return &Worker{
		regen: regen,
		log:   log,
		now:   time.Now,
		jobs: []job{
			{name: "daily rollup", periodType: model.PeriodDaily, next: nextDaily},
			{name: "weekly rollup", periodType: model.PeriodWeekly, next: nextWeekly},
			{name: "monthly rollup", periodType: model.PeriodMonthly, next: nextMonthly},
			{name: "yearly rollup", periodType: model.PeriodYearly, next: nextYearly},
		},
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if w.stop != nil {
		return fmt.Errorf("rollup scheduler already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run()
	return nil
}

func (w *Worker) Stop() {
	if w.stop == nil {
		return
	}
	w.stop()
	<-w.done
	w.stop = nil
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		now := w.now()
		idx := 0
		at := w.jobs[0].next(now)
		for i := 1; i < len(w.jobs); i++ {
			if t := w.jobs[i].next(now); t.Before(at) {
				idx, at = i, t
			}
		}

		timer := time.NewTimer(at.Sub(now))
		select {
		case <-w.ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			w.fire(w.jobs[idx], fired)
		}
	}
}

func (w *Worker) fire(j job, at time.Time) {
	ref := at.AddDate(0, 0, -1)
	w.log.Info().Str("job", j.name).Time("ref", ref).Msg("running scheduled rollup")

	if _, err := w.regen.Regenerate(w.ctx, j.periodType, ref); err != nil {
		w.log.Error().Err(err).Str("job", j.name).Msg("scheduled rollup failed")
	}
}

func nextDaily(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 1, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextWeekly(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, now.Location())
	for next.Weekday() != time.Monday || !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func nextMonthly(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), 1, 3, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

func nextYearly(now time.Time) time.Time {
	next := time.Date(now.Year(), time.January, 1, 4, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(1, 0, 0)
	}
	return next
}
