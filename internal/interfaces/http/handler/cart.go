package handler

import (
	"context"
	"time"

	cartapp "github.com/adfinitum/backend/internal/application/cart"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartService is the shopping cart API
type CartService interface {
	Get(ctx context.Context, owner cartapp.Owner) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, owner cartapp.Owner, productID uuid.UUID, quantity int) (*cartapp.CartResponse, error)
	UpdateItem(ctx context.Context, owner cartapp.Owner, itemID uuid.UUID, quantity int) (*cartapp.CartResponse, error)
	RemoveItem(ctx context.Context, owner cartapp.Owner, itemID uuid.UUID) (*cartapp.CartResponse, error)
	Clear(ctx context.Context, owner cartapp.Owner) error
	ApplyCoupon(ctx context.Context, owner cartapp.Owner, code string) (*cartapp.ApplyCouponResult, error)
}

// CouponService is the admin coupon API
type CouponService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]cartapp.CouponResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*cartapp.CouponResponse, error)
	Create(ctx context.Context, input cartapp.CouponInput) (*cartapp.CouponResponse, error)
	Update(ctx context.Context, id uuid.UUID, input cartapp.CouponInput) (*cartapp.CouponResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddCartItemRequest adds a product to the cart
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int      `json:"quantity" binding:"omitempty,gte=1"`
}

// UpdateCartItemRequest changes a line quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// ApplyCouponRequest applies a coupon code to the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// CouponRequest is the admin create/update payload for a coupon
type CouponRequest struct {
	Code            string           `json:"code" binding:"required,max=50"`
	DiscountPercent *decimal.Decimal `json:"discount_percent" binding:"required"`
	Active          *bool            `json:"active"`
	ValidFrom       time.Time        `json:"valid_from" binding:"required"`
	ValidTo         time.Time        `json:"valid_to" binding:"required"`
}

// CartHandler serves the cart of the signed-in user or the guest session
type CartHandler struct {
	BaseHandler
	cartService   CartService
	couponService CouponService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService CartService, couponService CouponService) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		couponService: couponService,
	}
}

func cartOwner(c *gin.Context) cartapp.Owner {
	return cartapp.Owner{
		UserID:    middleware.GetJWTUserUUID(c),
		SessionID: middleware.GetSessionID(c),
	}
}

// Get godoc
//
//	@Summary		Current cart
//	@Description	Signed-in users get their own cart, guests the cart of X-Session-ID
//	@Tags			cart
//	@ID				getCart
//	@Produce		json
//	@Param			X-Session-ID	header		string	false	"Guest session"
//	@Success		200				{object}	APIResponse[cartapp.CartResponse]
//	@Router			/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.cartService.Get(c.Request.Context(), cartOwner(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
//
//	@Summary		Add a product to the cart
//	@Description	An existing line for the product is incremented
//	@Tags			cart
//	@ID				addCartItem
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string				false	"Guest session"
//	@Param			request			body		AddCartItemRequest	true	"Product and quantity"
//	@Success		201				{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), cartOwner(c), req.ProductID, quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// UpdateItem godoc
//
//	@Summary		Change a cart line quantity
//	@Tags			cart
//	@ID				updateCartItem
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string					false	"Guest session"
//	@Param			id				path		string					true	"Cart item ID"	format(uuid)
//	@Param			request			body		UpdateCartItemRequest	true	"Quantity"
//	@Success		200				{object}	APIResponse[cartapp.CartResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.UpdateItem(c.Request.Context(), cartOwner(c), id, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
//
//	@Summary		Remove a cart line
//	@Tags			cart
//	@ID				removeCartItem
//	@Produce		json
//	@Param			X-Session-ID	header		string	false	"Guest session"
//	@Param			id				path		string	true	"Cart item ID"	format(uuid)
//	@Success		200				{object}	APIResponse[cartapp.CartResponse]
//	@Failure		404				{object}	ErrorResponse
//	@Router			/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), cartOwner(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
//
//	@Summary		Empty the cart
//	@Tags			cart
//	@ID				clearCart
//	@Produce		json
//	@Param			X-Session-ID	header		string	false	"Guest session"
//	@Success		200				{object}	APIResponse[dto.MessageData]
//	@Router			/cart/clear [post]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), cartOwner(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Cart cleared.")
}

// ApplyCoupon godoc
//
//	@Summary		Apply a coupon to the cart
//	@Tags			cart
//	@ID				applyCoupon
//	@Accept			json
//	@Produce		json
//	@Param			X-Session-ID	header		string				false	"Guest session"
//	@Param			request			body		ApplyCouponRequest	true	"Coupon code"
//	@Success		200				{object}	APIResponse[cartapp.ApplyCouponResult]
//	@Failure		400				{object}	ErrorResponse
//	@Router			/cart/apply-coupon [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req ApplyCouponRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.cartService.ApplyCoupon(c.Request.Context(), cartOwner(c), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListCoupons godoc
//
//	@Summary		List coupons
//	@Tags			coupons
//	@ID				listCoupons
//	@Produce		json
//	@Param			search		query		string	false	"Code contains"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[cartapp.CouponResponse]
//	@Failure		403			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/coupons [get]
func (h *CartHandler) ListCoupons(c *gin.Context) {
	var q dto.PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	coupons, total, err := h.couponService.List(c.Request.Context(), c.Query("search"), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, coupons, total, q.Page, q.PageSize)
}

// GetCoupon godoc
//
//	@Summary		Get coupon by ID
//	@Tags			coupons
//	@ID				getCoupon
//	@Produce		json
//	@Param			id	path		string	true	"Coupon ID"	format(uuid)
//	@Success		200	{object}	APIResponse[cartapp.CouponResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/coupons/{id} [get]
func (h *CartHandler) GetCoupon(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	coupon, err := h.couponService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// CreateCoupon godoc
//
//	@Summary		Create a coupon
//	@Tags			coupons
//	@ID				createCoupon
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CouponRequest	true	"Coupon"
//	@Success		201		{object}	APIResponse[cartapp.CouponResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/coupons [post]
func (h *CartHandler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if !h.bindJSON(c, &req) {
		return
	}
	coupon, err := h.couponService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, coupon)
}

// UpdateCoupon godoc
//
//	@Summary		Update a coupon
//	@Tags			coupons
//	@ID				updateCoupon
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Coupon ID"	format(uuid)
//	@Param			request	body		CouponRequest	true	"Coupon"
//	@Success		200		{object}	APIResponse[cartapp.CouponResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/coupons/{id} [put]
func (h *CartHandler) UpdateCoupon(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CouponRequest
	if !h.bindJSON(c, &req) {
		return
	}
	coupon, err := h.couponService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// DeleteCoupon godoc
//
//	@Summary		Delete a coupon
//	@Tags			coupons
//	@ID				deleteCoupon
//	@Param			id	path	string	true	"Coupon ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/coupons/{id} [delete]
func (h *CartHandler) DeleteCoupon(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (r CouponRequest) toInput() cartapp.CouponInput {
	return cartapp.CouponInput{
		Code:            r.Code,
		DiscountPercent: *r.DiscountPercent,
		Active:          r.Active,
		ValidFrom:       r.ValidFrom,
		ValidTo:         r.ValidTo,
	}
}
