package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a read-only projection of the order service's rows. Analytics
// never writes to these tables.
type Order struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	UserID      uuid.UUID       `gorm:"type:uuid" json:"user_id"`
	UserName    string          `json:"user_name"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid" json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2)" json:"line_total"`
}
