package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-analytics-service/internal/model"
)

var testDay = time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)

// threeOrderDay builds the canonical scenario: three orders totaling 150.00
// covering product A (qty 5, 100.00) and product B (qty 3, 50.00).
func threeOrderDay() (orders []model.Order, productA, productB uuid.UUID) {
	productA, productB = uuid.New(), uuid.New()
	alice, bob := uuid.New(), uuid.New()

	orders = []model.Order{
		{
			ID: uuid.New(), CreatedAt: testDay.Add(10 * time.Hour),
			TotalAmount: money("60.00"), UserID: alice, UserName: "Alice",
			Items: []model.OrderItem{
				{ProductID: productA, ProductName: "Grill Platter", Category: "Mains", Quantity: 3, LineTotal: money("60.00")},
			},
		},
		{
			ID: uuid.New(), CreatedAt: testDay.Add(12 * time.Hour),
			TotalAmount: money("56.00"), UserID: alice, UserName: "Alice",
			Items: []model.OrderItem{
				{ProductID: productA, ProductName: "Grill Platter", Category: "Mains", Quantity: 2, LineTotal: money("40.00")},
				{ProductID: productB, ProductName: "Lemonade", Category: "Drinks", Quantity: 1, LineTotal: money("16.00")},
			},
		},
		{
			ID: uuid.New(), CreatedAt: testDay.Add(19 * time.Hour),
			TotalAmount: money("34.00"), UserID: bob, UserName: "Bob",
			Items: []model.OrderItem{
				{ProductID: productB, ProductName: "Lemonade", Category: "Drinks", Quantity: 2, LineTotal: money("34.00")},
			},
		},
	}
	return orders, productA, productB
}

func newTestRegenerator(store *fakeSummaryStore, orders OrderSource, reservations *fakeReservationSource, budget time.Duration) *Regenerator {
	return NewRegenerator(store, orders, reservations, unlimitedGuard(), budget, zerolog.Nop())
}

func TestRegenerateDailyScenario(t *testing.T) {
	orders, productA, productB := threeOrderDay()
	store := newFakeSummaryStore()
	regen := newTestRegenerator(store, &fakeOrderSource{orders: orders}, &fakeReservationSource{count: 4}, 0)

	row, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	require.NoError(t, err)

	assert.True(t, row.TotalRevenue.Equal(money("150.00")), "got %s", row.TotalRevenue)
	assert.Equal(t, int64(3), row.TotalOrders)
	assert.True(t, row.AverageOrderValue.Equal(money("50.00")), "got %s", row.AverageOrderValue)
	assert.Equal(t, int64(2), row.TotalCustomers, "two distinct order takers")
	assert.Equal(t, int64(4), row.TotalReservations)
	assert.Equal(t, testDay, row.ReportDate)
	assert.Equal(t, testDay, row.PeriodStart)
	assert.Equal(t, testDay, row.PeriodEnd)

	entries, err := row.DecodeTopProducts()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, productA, entries[0].ProductID)
	assert.Equal(t, int64(5), entries[0].TotalQuantity)
	assert.True(t, entries[0].TotalRevenue.Equal(money("100.00")))
	assert.Equal(t, productB, entries[1].ProductID)
	assert.Equal(t, int64(3), entries[1].TotalQuantity)
	assert.True(t, entries[1].TotalRevenue.Equal(money("50.00")))

	require.NotNil(t, row.MostPopularProductID)
	require.NotNil(t, row.LeastPopularProductID)
	assert.Equal(t, productA, *row.MostPopularProductID)
	assert.Equal(t, productB, *row.LeastPopularProductID)

	sales, err := row.DecodeCategorySales()
	require.NoError(t, err)
	assert.Equal(t, "100.00", sales["Mains"])
	assert.Equal(t, "50.00", sales["Drinks"])

	perf, err := row.DecodeEmployeePerformance()
	require.NoError(t, err)
	require.Len(t, perf.Employees, 2)
	assert.Equal(t, "Alice", perf.Employees[0].UserName, "top revenue first")
	assert.True(t, perf.Employees[0].TopPerformer)
	require.NotNil(t, perf.TopPerformer)
	assert.Equal(t, perf.Employees[0].UserID, perf.TopPerformer.UserID)
	assert.Equal(t, 2, perf.TotalEmployees)

	// The row was persisted under its key.
	stored := store.get(testDay, model.PeriodDaily)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1), stored.Version)
}

func TestRegenerateIdempotent(t *testing.T) {
	orders, _, _ := threeOrderDay()
	store := newFakeSummaryStore()
	regen := newTestRegenerator(store, &fakeOrderSource{orders: orders}, &fakeReservationSource{count: 1}, 0)

	first, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	require.NoError(t, err)
	second, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	require.NoError(t, err)

	assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue))
	assert.Equal(t, first.TotalOrders, second.TotalOrders)
	assert.Equal(t, first.TotalCustomers, second.TotalCustomers)
	assert.Equal(t, first.TopProducts, second.TopProducts, "ranking bytes must be stable")
	assert.Equal(t, first.CategorySales, second.CategorySales)
	assert.Equal(t, first.EmployeePerformance, second.EmployeePerformance)
}

func TestRegenerateEmptyPeriod(t *testing.T) {
	store := newFakeSummaryStore()
	regen := newTestRegenerator(store, &fakeOrderSource{}, &fakeReservationSource{}, 0)

	row, err := regen.Regenerate(context.Background(), model.PeriodWeekly, testDay)
	require.NoError(t, err)

	assert.True(t, row.TotalRevenue.IsZero())
	assert.Equal(t, int64(0), row.TotalOrders)
	assert.True(t, row.AverageOrderValue.IsZero(), "AOV must be zero when there are no orders")
	assert.Nil(t, row.MostPopularProductID)
	assert.Nil(t, row.LeastPopularProductID)
}

func TestRegenerateTimeout(t *testing.T) {
	store := newFakeSummaryStore()
	slow := &slowOrderSource{delay: 50 * time.Millisecond}
	regen := newTestRegenerator(store, slow, &fakeReservationSource{}, time.Millisecond)

	_, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	assert.ErrorIs(t, err, ErrGenerationTimeout)
	assert.Nil(t, store.get(testDay, model.PeriodDaily), "no partial row may be persisted")
}

func TestRegenerateResourceGuardRefusal(t *testing.T) {
	guard := NewResourceGuard(1, 0.5) // 1-byte ceiling: always over
	store := newFakeSummaryStore()
	regen := NewRegenerator(store, &fakeOrderSource{}, &fakeReservationSource{}, guard, 0, zerolog.Nop())

	_, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	assert.ErrorIs(t, err, ErrResourceExhausted)
	assert.Nil(t, store.get(testDay, model.PeriodDaily))
}

func TestRegenerateFailureIdentifiesStep(t *testing.T) {
	orders, _, _ := threeOrderDay()

	// Fresh key: the failed attempt is a create.
	store := newFakeSummaryStore()
	store.upsertErr = errors.New("disk full")
	regen := newTestRegenerator(store, &fakeOrderSource{orders: orders}, &fakeReservationSource{}, 0)

	_, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, GenerationStepCreate, genErr.Step)

	// Existing key: the failed attempt is an update.
	store = newFakeSummaryStore()
	store.put(model.NewSalesSummary(model.ResolvePeriod(model.PeriodDaily, testDay)))
	store.upsertErr = errors.New("disk full")
	regen = newTestRegenerator(store, &fakeOrderSource{orders: orders}, &fakeReservationSource{}, 0)

	_, err = regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, GenerationStepUpdate, genErr.Step)
}

func TestRegenerateScanFailure(t *testing.T) {
	store := newFakeSummaryStore()
	regen := newTestRegenerator(store, &fakeOrderSource{err: errors.New("connection reset")}, &fakeReservationSource{}, 0)

	_, err := regen.Regenerate(context.Background(), model.PeriodDaily, testDay)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Nil(t, store.get(testDay, model.PeriodDaily))
}

// slowOrderSource waits out the deadline before answering.
type slowOrderSource struct {
	delay time.Duration
}

func (s *slowOrderSource) OrdersWithItems(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return nil, nil
	}
}
