package persistence

import (
	"context"
	"time"

	"github.com/adfinitum/backend/internal/domain/analytics"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/identity"
	"github.com/adfinitum/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAnalyticsRepository implements analytics.Repository using GORM
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// TotalRevenue sums order totals in the given statuses
func (r *GormAnalyticsRepository) TotalRevenue(ctx context.Context, statuses []string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(total), 0) AS total").
		Where("status IN ?", statuses).
		Scan(&result).Error
	return result.Total, err
}

// CountOrders counts all orders
func (r *GormAnalyticsRepository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&count).Error
	return count, err
}

// CountProducts counts all products
func (r *GormAnalyticsRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&count).Error
	return count, err
}

// CountCustomers counts users with the customer role
func (r *GormAnalyticsRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("role = ?", identity.RoleCustomer).
		Count(&count).Error
	return count, err
}

// SalesByDay groups revenue orders created since the given time by day
func (r *GormAnalyticsRepository) SalesByDay(ctx context.Context, since time.Time, statuses []string) ([]analytics.SalesPoint, error) {
	type dailyResult struct {
		Day   string
		Total decimal.Decimal
		Count int64
	}

	var results []dailyResult
	err := r.db.WithContext(ctx).Table("orders").
		Select(`
			DATE(created_at) AS day,
			COALESCE(SUM(total), 0) AS total,
			COUNT(*) AS count
		`).
		Where("created_at >= ?", since).
		Where("status IN ?", statuses).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	points := make([]analytics.SalesPoint, len(results))
	for i, row := range results {
		day := row.Day
		if len(day) > 10 {
			day = day[:10]
		}
		points[i] = analytics.SalesPoint{Day: day, Total: row.Total, Count: row.Count}
	}
	return points, nil
}

// RecentOrders returns the newest orders
func (r *GormAnalyticsRepository) RecentOrders(ctx context.Context, limit int) ([]analytics.RecentOrder, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Select("id", "email", "status", "total", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]analytics.RecentOrder, len(rows))
	for i, row := range rows {
		orders[i] = analytics.RecentOrder{
			ID:        row.ID,
			UserEmail: row.Email,
			Status:    string(row.Status),
			Total:     row.Total,
			CreatedAt: row.CreatedAt,
		}
	}
	return orders, nil
}

// TopProducts ranks products by units sold in revenue orders
func (r *GormAnalyticsRepository) TopProducts(ctx context.Context, statuses []string, limit int) ([]analytics.TopProduct, error) {
	type productResult struct {
		ProductID   *uuid.UUID
		ProductName string
		Quantity    int64
		Revenue     decimal.Decimal
	}

	var results []productResult
	err := r.db.WithContext(ctx).Table("order_items oi").
		Select(`
			oi.product_id AS product_id,
			MAX(oi.product_name) AS product_name,
			COALESCE(SUM(oi.quantity), 0) AS quantity,
			COALESCE(SUM(oi.subtotal), 0) AS revenue
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status IN ?", statuses).
		Group("oi.product_id").
		Order("quantity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	top := make([]analytics.TopProduct, len(results))
	for i, row := range results {
		top[i] = analytics.TopProduct{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			Revenue:     row.Revenue,
		}
	}
	return top, nil
}

// Ensure GormAnalyticsRepository implements analytics.Repository
var _ analytics.Repository = (*GormAnalyticsRepository)(nil)
