package service

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-analytics-service/internal/model"
)

// averageOrderValue returns revenue/orders rounded half-up to two decimals,
// or zero when there are no orders.
func averageOrderValue(revenue decimal.Decimal, orders int64) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.DivRound(decimal.NewFromInt(orders), 2)
}

// buildSummary computes a complete summary row for the period from a raw
// order scan. Used by full regeneration and, without persistence, by the
// live query fallback.
func buildSummary(p model.Period, orders []model.Order, reservations int64) (*model.SalesSummary, error) {
	row := model.NewSalesSummary(p)

	staff := make(map[uuid.UUID]bool)
	for _, order := range orders {
		row.TotalRevenue = row.TotalRevenue.Add(order.TotalAmount)
		row.TotalOrders++
		staff[order.UserID] = true
	}
	row.AverageOrderValue = averageOrderValue(row.TotalRevenue, row.TotalOrders)
	row.TotalCustomers = int64(len(staff))
	row.TotalReservations = reservations

	top := buildTopProducts(orders)
	if err := row.SetTopProducts(top); err != nil {
		return nil, err
	}
	row.MostPopularProductID, row.LeastPopularProductID = popularityRefs(orders)

	if err := row.SetCategorySales(categorySales(orders)); err != nil {
		return nil, err
	}
	if err := row.SetEmployeePerformance(employeePerformance(orders)); err != nil {
		return nil, err
	}

	return row, nil
}

// popularityRefs finds the most and least sold products by summed quantity
// across all line items.
func popularityRefs(orders []model.Order) (most, least *uuid.UUID) {
	quantities := make(map[uuid.UUID]int64)
	for _, order := range orders {
		for _, item := range order.Items {
			quantities[item.ProductID] += item.Quantity
		}
	}
	if len(quantities) == 0 {
		return nil, nil
	}

	var mostID, leastID uuid.UUID
	var mostQty, leastQty int64
	first := true
	for id, qty := range quantities {
		if first || qty > mostQty || (qty == mostQty && id.String() < mostID.String()) {
			mostID, mostQty = id, qty
		}
		if first || qty < leastQty || (qty == leastQty && id.String() < leastID.String()) {
			leastID, leastQty = id, qty
		}
		first = false
	}
	return &mostID, &leastID
}

func categorySales(orders []model.Order) model.CategorySales {
	totals := make(map[string]decimal.Decimal)
	for _, order := range orders {
		for _, item := range order.Items {
			totals[item.Category] = totals[item.Category].Add(item.LineTotal)
		}
	}
	sales := make(model.CategorySales, len(totals))
	for category, total := range totals {
		sales[category] = total.StringFixed(2)
	}
	return sales
}

func employeePerformance(orders []model.Order) *model.EmployeePerformance {
	byUser := make(map[uuid.UUID]*model.EmployeeStat)
	for _, order := range orders {
		stat, ok := byUser[order.UserID]
		if !ok {
			stat = &model.EmployeeStat{UserID: order.UserID, UserName: order.UserName}
			byUser[order.UserID] = stat
		}
		stat.OrderCount++
		stat.TotalRevenue = stat.TotalRevenue.Add(order.TotalAmount)
		for _, item := range order.Items {
			stat.ItemsSold += item.Quantity
		}
	}

	stats := make([]model.EmployeeStat, 0, len(byUser))
	for _, stat := range byUser {
		stat.AverageOrderValue = averageOrderValue(stat.TotalRevenue, stat.OrderCount)
		stats = append(stats, *stat)
	}
	return rankEmployees(stats)
}

// rankEmployees sorts descending by revenue and flags the top performer.
// Ties break on user ID for deterministic output.
func rankEmployees(stats []model.EmployeeStat) *model.EmployeePerformance {
	sort.SliceStable(stats, func(i, j int) bool {
		if !stats[i].TotalRevenue.Equal(stats[j].TotalRevenue) {
			return stats[i].TotalRevenue.GreaterThan(stats[j].TotalRevenue)
		}
		return stats[i].UserID.String() < stats[j].UserID.String()
	})
	for i := range stats {
		stats[i].TopPerformer = i == 0
	}

	perf := &model.EmployeePerformance{
		Employees:      stats,
		TotalEmployees: len(stats),
	}
	if len(stats) > 0 {
		top := stats[0]
		perf.TopPerformer = &top
	}
	return perf
}
