package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-analytics-service/internal/model"
)

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decodeEntries(t *testing.T, blob []byte) []model.TopProductEntry {
	t.Helper()
	row := &model.SalesSummary{TopProducts: blob}
	entries, err := row.DecodeTopProducts()
	require.NoError(t, err)
	return entries
}

func TestMergeTopProductsFromEmpty(t *testing.T) {
	productA := uuid.New()
	items := []model.OrderItem{
		{ProductID: productA, ProductName: "Lamb Shank", Category: "Mains", Quantity: 2, LineTotal: money("48.00")},
		{ProductID: productA, ProductName: "Lamb Shank", Category: "Mains", Quantity: 1, LineTotal: money("24.00")},
	}

	blob, err := mergeTopProducts(nil, items)
	require.NoError(t, err)

	entries := decodeEntries(t, blob)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].TotalQuantity)
	assert.True(t, entries[0].TotalRevenue.Equal(money("72.00")))
	// Two lines of the same product in one order still count one order.
	assert.Equal(t, int64(1), entries[0].OrderCount)
}

func TestMergeTopProductsAccumulates(t *testing.T) {
	productA, productB := uuid.New(), uuid.New()

	blob, err := mergeTopProducts(nil, []model.OrderItem{
		{ProductID: productA, ProductName: "Tea", Quantity: 1, LineTotal: money("3.00")},
		{ProductID: productB, ProductName: "Baklava", Quantity: 4, LineTotal: money("20.00")},
	})
	require.NoError(t, err)

	blob, err = mergeTopProducts(blob, []model.OrderItem{
		{ProductID: productA, ProductName: "Tea", Quantity: 6, LineTotal: money("18.00")},
	})
	require.NoError(t, err)

	entries := decodeEntries(t, blob)
	require.Len(t, entries, 2)
	// Tea now leads with 7 sold over two orders.
	assert.Equal(t, productA, entries[0].ProductID)
	assert.Equal(t, int64(7), entries[0].TotalQuantity)
	assert.Equal(t, int64(2), entries[0].OrderCount)
	assert.True(t, entries[0].TotalRevenue.Equal(money("21.00")))
	assert.Equal(t, productB, entries[1].ProductID)
}

func TestMergeTopProductsTruncates(t *testing.T) {
	blob := []byte(nil)
	for i := 0; i < model.TopProductsLimit+10; i++ {
		items := []model.OrderItem{{
			ProductID:   uuid.New(),
			ProductName: fmt.Sprintf("dish %d", i),
			Quantity:    int64(i + 1),
			LineTotal:   money("10.00"),
		}}
		var err error
		blob, err = mergeTopProducts(blob, items)
		require.NoError(t, err)
	}

	entries := decodeEntries(t, blob)
	assert.Len(t, entries, model.TopProductsLimit)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i].TotalQuantity, entries[i-1].TotalQuantity,
			"ranking must be non-increasing by quantity")
	}
	// The smallest quantities were trimmed away.
	assert.Equal(t, int64(model.TopProductsLimit+10), entries[0].TotalQuantity)
}

func TestMergeTopProductsCorruptBlob(t *testing.T) {
	_, err := mergeTopProducts([]byte("{not json"), nil)
	assert.ErrorIs(t, err, ErrDataCorruption)
}

func TestBuildTopProductsCountsOrdersNotLines(t *testing.T) {
	productA := uuid.New()
	orders := []model.Order{
		{ID: uuid.New(), Items: []model.OrderItem{
			{ProductID: productA, Quantity: 1, LineTotal: money("5.00")},
			{ProductID: productA, Quantity: 2, LineTotal: money("10.00")},
		}},
		{ID: uuid.New(), Items: []model.OrderItem{
			{ProductID: productA, Quantity: 1, LineTotal: money("5.00")},
		}},
	}

	entries := buildTopProducts(orders)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].TotalQuantity)
	assert.Equal(t, int64(2), entries[0].OrderCount)
	assert.True(t, entries[0].TotalRevenue.Equal(money("20.00")))
}
