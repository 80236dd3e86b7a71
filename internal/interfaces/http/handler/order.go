package handler

import (
	"context"

	orderapp "github.com/adfinitum/backend/internal/application/order"
	"github.com/adfinitum/backend/internal/application/printing"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is the order API
type OrderService interface {
	Checkout(ctx context.Context, actor appshared.Actor, input orderapp.CheckoutInput) (*orderapp.OrderResponse, error)
	List(ctx context.Context, actor appshared.Actor, filter orderapp.ListFilter) (*orderapp.ListResult, error)
	Get(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*orderapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, actor appshared.Actor, id uuid.UUID, status, note string) (*orderapp.OrderResponse, error)
	Cancel(ctx context.Context, actor appshared.Actor, id uuid.UUID) (*orderapp.OrderResponse, error)
	History(ctx context.Context, actor appshared.Actor, id uuid.UUID) ([]orderapp.HistoryResponse, error)
}

// InvoiceService renders order invoices
type InvoiceService interface {
	Generate(ctx context.Context, actor appshared.Actor, orderID uuid.UUID) (*printing.InvoiceResponse, error)
}

// CheckoutRequest turns a cart into an order
type CheckoutRequest struct {
	CartID            uuid.UUID `json:"cart_id" binding:"required"`
	Email             string    `json:"email" binding:"required,email"`
	FullName          string    `json:"full_name" binding:"required,max=150"`
	PhoneNumber       string    `json:"phone_number" binding:"omitempty,max=20"`
	ShippingAddressID uuid.UUID `json:"shipping_address_id" binding:"required"`
	ShippingMethodID  uuid.UUID `json:"shipping_method_id" binding:"required"`
	PaymentMethod     string    `json:"payment_method" binding:"omitempty,oneof=mpesa bank cod"`
	BillingAddress    string    `json:"billing_address" binding:"omitempty,max=500"`
}

// OrderListRequest is the order list query
type OrderListRequest struct {
	dto.PageQuery
	Status string `form:"status"`
	Search string `form:"search"`
}

// StatusUpdateRequest moves an order or shipment to another status
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=500"`
}

// OrderStatusResponse is returned by the admin status update
type OrderStatusResponse struct {
	Status string                 `json:"status"`
	Order  orderapp.OrderResponse `json:"order"`
}

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService   OrderService
	invoiceService InvoiceService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService, invoiceService InvoiceService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		invoiceService: invoiceService,
	}
}

// Checkout godoc
//
//	@Summary		Place an order
//	@Description	Converts the given cart into an order in one transaction
//	@Tags			orders
//	@ID				checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CheckoutRequest	true	"Checkout form"
//	@Success		201		{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Checkout(c.Request.Context(), actor(c), orderapp.CheckoutInput{
		CartID:            req.CartID,
		Email:             req.Email,
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		ShippingAddressID: req.ShippingAddressID,
		ShippingMethodID:  req.ShippingMethodID,
		PaymentMethod:     req.PaymentMethod,
		BillingAddress:    req.BillingAddress,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List godoc
//
//	@Summary		List orders
//	@Description	Staff see every order, customers their own
//	@Tags			orders
//	@ID				listOrders
//	@Produce		json
//	@Param			status		query		string	false	"Order status"
//	@Param			search		query		string	false	"Email or name contains"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[orderapp.OrderResponse]
//	@Failure		401			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var q OrderListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.orderService.List(c.Request.Context(), actor(c), orderapp.ListFilter{
		Status:   q.Status,
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Orders, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
//
//	@Summary		Get order by ID
//	@Tags			orders
//	@ID				getOrder
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
//
//	@Summary		Change order status
//	@Description	Applies an allowed transition and appends a history entry
//	@Tags			orders
//	@ID				updateOrderStatus
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Order ID"	format(uuid)
//	@Param			request	body		StatusUpdateRequest	true	"New status"
//	@Success		200		{object}	APIResponse[OrderStatusResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/update-status [post]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req StatusUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), actor(c), id, req.Status, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, OrderStatusResponse{
		Status: "Order updated to " + order.Status,
		Order:  *order,
	})
}

// Cancel godoc
//
//	@Summary		Cancel an order
//	@Description	Allowed for the owner and staff before shipping
//	@Tags			orders
//	@ID				cancelOrder
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Cancel(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// History godoc
//
//	@Summary		Order status history
//	@Tags			orders
//	@ID				getOrderHistory
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]orderapp.HistoryResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.orderService.History(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Invoice godoc
//
//	@Summary		Download link for the order invoice
//	@Description	Renders the invoice PDF and returns a presigned URL
//	@Tags			orders
//	@ID				getOrderInvoice
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	APIResponse[printing.InvoiceResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Generate(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
