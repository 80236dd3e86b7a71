// Package analytics holds the read models behind the admin dashboard.
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overview holds headline dashboard numbers
type Overview struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalOrders    int64           `json:"total_orders"`
	TotalProducts  int64           `json:"total_products"`
	TotalCustomers int64           `json:"total_customers"`
}

// SalesPoint is revenue aggregated for one day
type SalesPoint struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// RecentOrder is a compact view of an order
type RecentOrder struct {
	ID        uuid.UUID       `json:"id"`
	UserEmail string          `json:"user_email"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// TopProduct is a best seller by units sold
type TopProduct struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Repository runs aggregate queries for the dashboard.
// statuses selects which orders count as revenue.
type Repository interface {
	TotalRevenue(ctx context.Context, statuses []string) (decimal.Decimal, error)
	CountOrders(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	SalesByDay(ctx context.Context, since time.Time, statuses []string) ([]SalesPoint, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	TopProducts(ctx context.Context, statuses []string, limit int) ([]TopProduct, error)
}
