package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopProductsLimit caps the per-product ranking stored on a summary row.
const TopProductsLimit = 20

// SalesSummary is the persisted aggregate for one (report_date, report_type)
// key. The nested rankings are serialized jsonb blobs colocated with the row.
// Version backs optimistic locking on the incremental update path.
type SalesSummary struct {
	ID         int64      `gorm:"primaryKey" json:"-"`
	ReportDate time.Time  `gorm:"type:date" json:"report_date"`
	ReportType PeriodType `gorm:"type:varchar(16)" json:"report_type"`

	PeriodStart time.Time `gorm:"type:date" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:date" json:"period_end"`

	TotalRevenue      decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_revenue"`
	TotalOrders       int64           `json:"total_orders"`
	AverageOrderValue decimal.Decimal `gorm:"type:decimal(12,2)" json:"average_order_value"`
	TotalCustomers    int64           `json:"total_customers"`
	TotalReservations int64           `json:"total_reservations"`

	MostPopularProductID  *uuid.UUID `gorm:"type:uuid" json:"most_popular_product_id,omitempty"`
	LeastPopularProductID *uuid.UUID `gorm:"type:uuid" json:"least_popular_product_id,omitempty"`

	TopProducts         []byte `gorm:"type:jsonb" json:"-"`
	CategorySales       []byte `gorm:"type:jsonb" json:"-"`
	EmployeePerformance []byte `gorm:"type:jsonb" json:"-"`

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TopProductEntry struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	OrderCount    int64           `json:"order_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// CategorySales maps a product category to its cumulative revenue,
// serialized as a plain two-decimal string.
type CategorySales map[string]string

type EmployeeStat struct {
	UserID            uuid.UUID       `json:"user_id"`
	UserName          string          `json:"user_name"`
	OrderCount        int64           `json:"order_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ItemsSold         int64           `json:"items_sold"`
	TopPerformer      bool            `json:"top_performer"`
}

type EmployeePerformance struct {
	Employees      []EmployeeStat `json:"employees"`
	TopPerformer   *EmployeeStat  `json:"top_performer,omitempty"`
	TotalEmployees int            `json:"total_employees"`
}

// RevenueAnalytics is the query-facing shape of a summary row's headline
// numbers.
type RevenueAnalytics struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int64           `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TotalCustomers    int64           `json:"total_customers"`
	ReportDate        time.Time       `json:"report_date"`
	ReportType        PeriodType      `json:"report_type"`
}

func (s *SalesSummary) DecodeTopProducts() ([]TopProductEntry, error) {
	if len(s.TopProducts) == 0 {
		return nil, nil
	}
	var entries []TopProductEntry
	if err := json.Unmarshal(s.TopProducts, &entries); err != nil {
		return nil, fmt.Errorf("decode top products: %w", err)
	}
	return entries, nil
}

func (s *SalesSummary) SetTopProducts(entries []TopProductEntry) error {
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode top products: %w", err)
	}
	s.TopProducts = encoded
	return nil
}

func (s *SalesSummary) DecodeCategorySales() (CategorySales, error) {
	if len(s.CategorySales) == 0 {
		return CategorySales{}, nil
	}
	var sales CategorySales
	if err := json.Unmarshal(s.CategorySales, &sales); err != nil {
		return nil, fmt.Errorf("decode category sales: %w", err)
	}
	return sales, nil
}

func (s *SalesSummary) SetCategorySales(sales CategorySales) error {
	encoded, err := json.Marshal(sales)
	if err != nil {
		return fmt.Errorf("encode category sales: %w", err)
	}
	s.CategorySales = encoded
	return nil
}

func (s *SalesSummary) DecodeEmployeePerformance() (*EmployeePerformance, error) {
	if len(s.EmployeePerformance) == 0 {
		return &EmployeePerformance{}, nil
	}
	var perf EmployeePerformance
	if err := json.Unmarshal(s.EmployeePerformance, &perf); err != nil {
		return nil, fmt.Errorf("decode employee performance: %w", err)
	}
	return &perf, nil
}

func (s *SalesSummary) SetEmployeePerformance(perf *EmployeePerformance) error {
	encoded, err := json.Marshal(perf)
	if err != nil {
		return fmt.Errorf("encode employee performance: %w", err)
	}
	s.EmployeePerformance = encoded
	return nil
}

func (s *SalesSummary) Revenue() RevenueAnalytics {
	return RevenueAnalytics{
		TotalRevenue:      s.TotalRevenue,
		TotalOrders:       s.TotalOrders,
		AverageOrderValue: s.AverageOrderValue,
		TotalCustomers:    s.TotalCustomers,
		ReportDate:        s.ReportDate,
		ReportType:        s.ReportType,
	}
}

// NewSalesSummary returns a zeroed row for the period, ready to absorb its
// first order.
func NewSalesSummary(p Period) *SalesSummary {
	return &SalesSummary{
		ReportDate:        p.ReportDate,
		ReportType:        p.Type,
		PeriodStart:       p.Start,
		PeriodEnd:         p.End,
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
}
