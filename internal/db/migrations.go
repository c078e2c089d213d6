package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS sales_summaries (
		id BIGSERIAL PRIMARY KEY,
		report_date DATE NOT NULL,
		report_type VARCHAR(16) NOT NULL,
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		total_revenue DECIMAL(12,2) NOT NULL DEFAULT 0,
		total_orders BIGINT NOT NULL DEFAULT 0,
		average_order_value DECIMAL(12,2) NOT NULL DEFAULT 0,
		total_customers BIGINT NOT NULL DEFAULT 0,
		total_reservations BIGINT NOT NULL DEFAULT 0,
		most_popular_product_id UUID,
		least_popular_product_id UUID,
		top_products JSONB,
		category_sales JSONB,
		employee_performance JSONB,
		version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_summaries_key
		ON sales_summaries (report_date, report_type);`,
	`CREATE INDEX IF NOT EXISTS idx_sales_summaries_type
		ON sales_summaries (report_type, report_date DESC);`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'orders') THEN
			CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'order_items') THEN
			CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'reservations') THEN
			CREATE INDEX IF NOT EXISTS idx_reservations_time ON reservations (reservation_time);
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
