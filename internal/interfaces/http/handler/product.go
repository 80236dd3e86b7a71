package handler

import (
	"context"

	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductService is the catalog product API
type ProductService interface {
	List(ctx context.Context, query catalogapp.ProductListQuery) (*catalogapp.ProductListResult, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.ProductResponse, error)
	GetBySlug(ctx context.Context, slug string) (*catalogapp.ProductResponse, error)
	Create(ctx context.Context, input catalogapp.ProductInput, createdBy *uuid.UUID) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, input catalogapp.ProductInput) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddImage(ctx context.Context, productID uuid.UUID, upload appshared.Upload, altText string, featured bool) (*catalogapp.ImageResponse, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
	AddVariation(ctx context.Context, productID uuid.UUID, input catalogapp.VariationInput) (*catalogapp.VariationResponse, error)
	UpdateVariation(ctx context.Context, productID, variationID uuid.UUID, input catalogapp.VariationInput) (*catalogapp.VariationResponse, error)
	DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error
}

// ReviewService is the product review API
type ReviewService interface {
	List(ctx context.Context, productID uuid.UUID, page, pageSize int) (*catalogapp.ReviewListResult, error)
	Create(ctx context.Context, productID, userID uuid.UUID, input catalogapp.ReviewInput) (*catalogapp.ReviewResponse, error)
	Delete(ctx context.Context, productID, reviewID, userID uuid.UUID, canManage bool) error
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	BaseHandler
	productService ProductService
	reviewService  ReviewService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService ProductService, reviewService ReviewService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		reviewService:  reviewService,
	}
}

// List godoc
//
//	@Summary		List products
//	@Description	Active products with filters, ordering and pagination
//	@Tags			products
//	@ID				listProducts
//	@Produce		json
//	@Param			category	query		string	false	"Category UUID or slug"
//	@Param			brand		query		string	false	"Brand ID"	format(uuid)
//	@Param			min_price	query		number	false	"Minimum price"
//	@Param			max_price	query		number	false	"Maximum price"
//	@Param			is_featured	query		bool	false	"Featured only"
//	@Param			is_on_sale	query		bool	false	"Discounted only"
//	@Param			search		query		string	false	"Name, description or SKU"
//	@Param			ordering	query		string	false	"price, -price, created_at, -created_at, updated_at, -updated_at"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[catalogapp.ProductResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Router			/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var req ProductListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	brandID, ok := h.queryUUID(c, "brand")
	if !ok {
		return
	}
	minPrice, ok := h.queryDecimal(c, "min_price")
	if !ok {
		return
	}
	maxPrice, ok := h.queryDecimal(c, "max_price")
	if !ok {
		return
	}

	result, err := h.productService.List(c.Request.Context(), catalogapp.ProductListQuery{
		Category:   req.Category,
		BrandID:    brandID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		IsFeatured: queryBool(c, "is_featured"),
		IsOnSale:   queryBool(c, "is_on_sale"),
		Search:     req.Search,
		Ordering:   req.Ordering,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Products, result.Total, result.Page, result.PageSize)
}

// GetByID godoc
//
//	@Summary		Get product by ID
//	@Tags			products
//	@ID				getProduct
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"	format(uuid)
//	@Success		200	{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id, middleware.CanManage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetBySlug godoc
//
//	@Summary		Get product by slug
//	@Tags			products
//	@ID				getProductBySlug
//	@Produce		json
//	@Param			slug	path		string	true	"Product slug"
//	@Success		200		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/slug/{slug} [get]
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
//
//	@Summary		Create a product
//	@Tags			products
//	@ID				createProduct
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ProductRequest	true	"Product"
//	@Success		201		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/create [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req.toInput(), middleware.GetJWTUserUUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
//
//	@Summary		Update a product
//	@Tags			products
//	@ID				updateProduct
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Product ID"	format(uuid)
//	@Param			request	body		ProductRequest	true	"Product"
//	@Success		200		{object}	APIResponse[catalogapp.ProductResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/update [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
//
//	@Summary		Delete a product
//	@Tags			products
//	@ID				deleteProduct
//	@Param			id	path	string	true	"Product ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/delete [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddImage godoc
//
//	@Summary		Upload a product image
//	@Tags			products
//	@ID				addProductImage
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		string	true	"Product ID"	format(uuid)
//	@Param			image		formData	file	true	"Image file"
//	@Param			alt_text	formData	string	false	"Alternative text"
//	@Param			is_featured	formData	bool	false	"Featured image"
//	@Success		201			{object}	APIResponse[catalogapp.ImageResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		413			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/images [post]
func (h *ProductHandler) AddImage(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var form ProductImageForm
	if !h.bindForm(c, &form) {
		return
	}
	upload, closeFile, err := formUpload(c, "image")
	if err != nil {
		h.FieldError(c, "image", "The submitted data was not a file.")
		return
	}
	defer closeFile()
	if upload == nil {
		h.FieldError(c, "image", "No file was submitted.")
		return
	}

	image, err := h.productService.AddImage(c.Request.Context(), id, *upload, form.AltText, form.IsFeatured)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, image)
}

// DeleteImage godoc
//
//	@Summary		Delete a product image
//	@Tags			products
//	@ID				deleteProductImage
//	@Param			id		path	string	true	"Product ID"	format(uuid)
//	@Param			imageId	path	string	true	"Image ID"		format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/images/{imageId} [delete]
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.pathUUID(c, "imageId")
	if !ok {
		return
	}
	if err := h.productService.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddVariation godoc
//
//	@Summary		Add a product variation
//	@Tags			products
//	@ID				addProductVariation
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Product ID"	format(uuid)
//	@Param			request	body		VariationRequest	true	"Variation"
//	@Success		201		{object}	APIResponse[catalogapp.VariationResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/variations [post]
func (h *ProductHandler) AddVariation(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req VariationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	variation, err := h.productService.AddVariation(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variation)
}

// UpdateVariation godoc
//
//	@Summary		Update a product variation
//	@Tags			products
//	@ID				updateProductVariation
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Product ID"	format(uuid)
//	@Param			variationId	path		string				true	"Variation ID"	format(uuid)
//	@Param			request		body		VariationRequest	true	"Variation"
//	@Success		200			{object}	APIResponse[catalogapp.VariationResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/variations/{variationId} [put]
func (h *ProductHandler) UpdateVariation(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	variationID, ok := h.pathUUID(c, "variationId")
	if !ok {
		return
	}
	var req VariationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	variation, err := h.productService.UpdateVariation(c.Request.Context(), id, variationID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variation)
}

// DeleteVariation godoc
//
//	@Summary		Delete a product variation
//	@Tags			products
//	@ID				deleteProductVariation
//	@Param			id			path	string	true	"Product ID"	format(uuid)
//	@Param			variationId	path	string	true	"Variation ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/variations/{variationId} [delete]
func (h *ProductHandler) DeleteVariation(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	variationID, ok := h.pathUUID(c, "variationId")
	if !ok {
		return
	}
	if err := h.productService.DeleteVariation(c.Request.Context(), id, variationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListReviews godoc
//
//	@Summary		List product reviews
//	@Tags			products
//	@ID				listProductReviews
//	@Produce		json
//	@Param			id			path		string	true	"Product ID"	format(uuid)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[catalogapp.ReviewResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Router			/products/{id}/reviews [get]
func (h *ProductHandler) ListReviews(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.reviewService.List(c.Request.Context(), id, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Reviews, result.Total, result.Page, result.PageSize)
}

// CreateReview godoc
//
//	@Summary		Review a product
//	@Description	One review per product and user
//	@Tags			products
//	@ID				createProductReview
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Product ID"	format(uuid)
//	@Param			request	body		ReviewRequest	true	"Review"
//	@Success		201		{object}	APIResponse[catalogapp.ReviewResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/reviews [post]
func (h *ProductHandler) CreateReview(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), id, userID, catalogapp.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// DeleteReview godoc
//
//	@Summary		Delete a review
//	@Description	Allowed for the author and admins
//	@Tags			products
//	@ID				deleteProductReview
//	@Param			id			path	string	true	"Product ID"	format(uuid)
//	@Param			reviewId	path	string	true	"Review ID"		format(uuid)
//	@Success		204
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/products/{id}/reviews/{reviewId} [delete]
func (h *ProductHandler) DeleteReview(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	reviewID, ok := h.pathUUID(c, "reviewId")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), id, reviewID, userID, middleware.CanManage(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
