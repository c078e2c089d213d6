package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"restaurant-analytics-service/internal/model"
)

// mergeTopProducts folds one order's line items into an encoded top-products
// blob: decode into a map, accumulate per product, re-sort by quantity and
// trim to the stored limit. Order count grows by one per product per order,
// regardless of how many lines reference the product.
func mergeTopProducts(existing []byte, items []model.OrderItem) ([]byte, error) {
	row := &model.SalesSummary{TopProducts: existing}
	entries, err := row.DecodeTopProducts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataCorruption, err)
	}

	byProduct := make(map[uuid.UUID]*model.TopProductEntry, len(entries))
	for i := range entries {
		entry := entries[i]
		byProduct[entry.ProductID] = &entry
	}

	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		entry, ok := byProduct[item.ProductID]
		if !ok {
			entry = &model.TopProductEntry{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
			}
			byProduct[item.ProductID] = entry
		}
		entry.TotalQuantity += item.Quantity
		entry.TotalRevenue = entry.TotalRevenue.Add(item.LineTotal)
		if !seen[item.ProductID] {
			entry.OrderCount++
			seen[item.ProductID] = true
		}
	}

	merged := make([]model.TopProductEntry, 0, len(byProduct))
	for _, entry := range byProduct {
		merged = append(merged, *entry)
	}
	merged = rankTopProducts(merged)

	out := &model.SalesSummary{}
	if err := out.SetTopProducts(merged); err != nil {
		return nil, err
	}
	return out.TopProducts, nil
}

// buildTopProducts computes the ranking from scratch over a full order scan.
func buildTopProducts(orders []model.Order) []model.TopProductEntry {
	byProduct := make(map[uuid.UUID]*model.TopProductEntry)
	for _, order := range orders {
		seen := make(map[uuid.UUID]bool, len(order.Items))
		for _, item := range order.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &model.TopProductEntry{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
				}
				byProduct[item.ProductID] = entry
			}
			entry.TotalQuantity += item.Quantity
			entry.TotalRevenue = entry.TotalRevenue.Add(item.LineTotal)
			if !seen[item.ProductID] {
				entry.OrderCount++
				seen[item.ProductID] = true
			}
		}
	}

	entries := make([]model.TopProductEntry, 0, len(byProduct))
	for _, entry := range byProduct {
		entries = append(entries, *entry)
	}
	return rankTopProducts(entries)
}

// rankTopProducts sorts descending by quantity and trims to the limit.
// Ties break on product ID only so that rebuilding the same data yields the
// same bytes; the relative ranking of equal quantities carries no meaning.
func rankTopProducts(entries []model.TopProductEntry) []model.TopProductEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalQuantity != entries[j].TotalQuantity {
			return entries[i].TotalQuantity > entries[j].TotalQuantity
		}
		return entries[i].ProductID.String() < entries[j].ProductID.String()
	})
	if len(entries) > model.TopProductsLimit {
		entries = entries[:model.TopProductsLimit]
	}
	return entries
}
