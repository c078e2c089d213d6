package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"restaurant-analytics-service/internal/model"
	"restaurant-analytics-service/internal/repository"
)

// fakeSummaryStore mirrors the repository's semantics in memory, including
// version handling and conflict signalling.
type fakeSummaryStore struct {
	mu   sync.Mutex
	rows map[string]*model.SalesSummary

	getErr    error
	upsertErr error
	getCalls  int
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{rows: make(map[string]*model.SalesSummary)}
}

func summaryKey(reportDate time.Time, periodType model.PeriodType) string {
	return fmt.Sprintf("%s|%s", reportDate.Format("2006-01-02"), periodType)
}

func cloneSummary(row *model.SalesSummary) *model.SalesSummary {
	clone := *row
	clone.TopProducts = append([]byte(nil), row.TopProducts...)
	clone.CategorySales = append([]byte(nil), row.CategorySales...)
	clone.EmployeePerformance = append([]byte(nil), row.EmployeePerformance...)
	return &clone
}

func (s *fakeSummaryStore) Get(ctx context.Context, reportDate time.Time, periodType model.PeriodType) (*model.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	row, ok := s.rows[summaryKey(reportDate, periodType)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneSummary(row), nil
}

func (s *fakeSummaryStore) Create(ctx context.Context, row *model.SalesSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := summaryKey(row.ReportDate, row.ReportType)
	if _, ok := s.rows[key]; ok {
		return repository.ErrConflict
	}
	row.Version = 1
	s.rows[key] = cloneSummary(row)
	return nil
}

func (s *fakeSummaryStore) Upsert(ctx context.Context, row *model.SalesSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	row.Version++
	s.rows[summaryKey(row.ReportDate, row.ReportType)] = cloneSummary(row)
	return nil
}

func (s *fakeSummaryStore) UpdateVersioned(ctx context.Context, row *model.SalesSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := summaryKey(row.ReportDate, row.ReportType)
	stored, ok := s.rows[key]
	if !ok || stored.Version != row.Version {
		return repository.ErrConflict
	}
	row.Version++
	s.rows[key] = cloneSummary(row)
	return nil
}

func (s *fakeSummaryStore) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SalesSummary
	for _, row := range s.rows {
		if !row.ReportDate.Before(from) && !row.ReportDate.After(to) {
			out = append(out, *cloneSummary(row))
		}
	}
	return out, nil
}

func (s *fakeSummaryStore) ListByType(ctx context.Context, periodType model.PeriodType) ([]model.SalesSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SalesSummary
	for _, row := range s.rows {
		if row.ReportType == periodType {
			out = append(out, *cloneSummary(row))
		}
	}
	return out, nil
}

func (s *fakeSummaryStore) get(reportDate time.Time, periodType model.PeriodType) *model.SalesSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[summaryKey(reportDate, periodType)]
	if !ok {
		return nil
	}
	return cloneSummary(row)
}

func (s *fakeSummaryStore) put(row *model.SalesSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[summaryKey(row.ReportDate, row.ReportType)] = cloneSummary(row)
}

type fakeOrderSource struct {
	orders []model.Order
	err    error
	calls  int
}

func (s *fakeOrderSource) OrdersWithItems(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	var out []model.Order
	for _, order := range s.orders {
		if !order.CreatedAt.Before(from) && !order.CreatedAt.After(to) {
			out = append(out, order)
		}
	}
	return out, nil
}

type fakeReservationSource struct {
	count int64
	err   error
}

func (s *fakeReservationSource) CountInRange(ctx context.Context, from, to time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.count, s.err
}

// unlimitedGuard never refuses.
func unlimitedGuard() *ResourceGuard {
	return NewResourceGuard(0, 0.8)
}
