package handler

import (
	"context"
	"strconv"

	"github.com/adfinitum/backend/internal/domain/analytics"
	"github.com/gin-gonic/gin"
)

// AnalyticsService serves the admin dashboard figures
type AnalyticsService interface {
	Overview(ctx context.Context) (*analytics.Overview, error)
	Sales(ctx context.Context, days int) ([]analytics.SalesPoint, error)
	RecentOrders(ctx context.Context, limit int) ([]analytics.RecentOrder, error)
	TopProducts(ctx context.Context, limit int) ([]analytics.TopProduct, error)
}

// AnalyticsHandler handles the read-only dashboard endpoints
type AnalyticsHandler struct {
	BaseHandler
	analyticsService AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Overview godoc
//
//	@Summary		Store totals
//	@Tags			analytics
//	@ID				analyticsOverview
//	@Produce		json
//	@Success		200	{object}	APIResponse[analytics.Overview]
//	@Failure		403	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.analyticsService.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// Sales godoc
//
//	@Summary		Daily revenue
//	@Tags			analytics
//	@ID				analyticsSales
//	@Produce		json
//	@Param			days	query		int	false	"Days back, 1..365"	default(30)
//	@Success		200		{object}	APIResponse[[]analytics.SalesPoint]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/analytics/sales [get]
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	days, ok := h.queryInt(c, "days")
	if !ok {
		return
	}
	points, err := h.analyticsService.Sales(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// RecentOrders godoc
//
//	@Summary		Newest orders
//	@Tags			analytics
//	@ID				analyticsRecentOrders
//	@Produce		json
//	@Param			limit	query		int	false	"Rows, 1..100"	default(10)
//	@Success		200		{object}	APIResponse[[]analytics.RecentOrder]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/analytics/recent-orders [get]
func (h *AnalyticsHandler) RecentOrders(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}
	orders, err := h.analyticsService.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// TopProducts godoc
//
//	@Summary		Best sellers
//	@Tags			analytics
//	@ID				analyticsTopProducts
//	@Produce		json
//	@Param			limit	query		int	false	"Rows, 1..100"	default(5)
//	@Success		200		{object}	APIResponse[[]analytics.TopProduct]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/analytics/top-products [get]
func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}
	products, err := h.analyticsService.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// queryInt reads an optional integer; absent means 0
func (h *AnalyticsHandler) queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		h.FieldError(c, name, "A valid integer is required.")
		return 0, false
	}
	return n, true
}
