// Package analytics serves the admin dashboard figures.
package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adfinitum/backend/internal/domain/analytics"
	"github.com/adfinitum/backend/internal/domain/order"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Query defaults and bounds
const (
	DefaultSalesDays   = 30
	MaxSalesDays       = 365
	DefaultRecentLimit = 10
	DefaultTopLimit    = 5
	MaxLimit           = 100
)

// revenueStatuses are the order statuses counted as revenue
var revenueStatuses = []string{
	string(order.StatusPaid),
	string(order.StatusShipped),
	string(order.StatusDelivered),
}

// AnalyticsService aggregates orders, products and customers
type AnalyticsService struct {
	repo   analytics.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repo analytics.Repository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, logger: logger, now: time.Now}
}

// Overview returns the headline numbers
func (s *AnalyticsService) Overview(ctx context.Context) (*analytics.Overview, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "overview")
	defer span.End()

	revenue, err := s.repo.TotalRevenue(ctx, revenueStatuses)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	orders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	products, err := s.repo.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	return &analytics.Overview{
		TotalRevenue:   revenue,
		TotalOrders:    orders,
		TotalProducts:  products,
		TotalCustomers: customers,
	}, nil
}

// Sales returns daily revenue for the last days days, oldest first.
// days of 0 means the default.
func (s *AnalyticsService) Sales(ctx context.Context, days int) ([]analytics.SalesPoint, error) {
	if days == 0 {
		days = DefaultSalesDays
	}
	if days < 1 || days > MaxSalesDays {
		return nil, rangeError("days", MaxSalesDays)
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "sales", attribute.Int("analytics.days", days))
	defer span.End()

	since := s.now().AddDate(0, 0, -days)
	points, err := s.repo.SalesByDay(ctx, since, revenueStatuses)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	if points == nil {
		points = []analytics.SalesPoint{}
	}
	return points, nil
}

// RecentOrders returns the newest orders
func (s *AnalyticsService) RecentOrders(ctx context.Context, limit int) ([]analytics.RecentOrder, error) {
	if limit == 0 {
		limit = DefaultRecentLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, rangeError("limit", MaxLimit)
	}
	orders, err := s.repo.RecentOrders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	if orders == nil {
		orders = []analytics.RecentOrder{}
	}
	return orders, nil
}

// TopProducts returns best sellers by quantity sold
func (s *AnalyticsService) TopProducts(ctx context.Context, limit int) ([]analytics.TopProduct, error) {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, rangeError("limit", MaxLimit)
	}
	products, err := s.repo.TopProducts(ctx, revenueStatuses, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	if products == nil {
		products = []analytics.TopProduct{}
	}
	return products, nil
}

func rangeError(field string, max int) error {
	return shared.NewFieldError(field, "Ensure this value is between 1 and "+strconv.Itoa(max)+".")
}
