package handler

import (
	"context"

	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BrandService is the catalog brand API
type BrandService interface {
	List(ctx context.Context, search string, activeOnly bool, page, pageSize int) ([]catalogapp.BrandResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*catalogapp.BrandResponse, error)
	Create(ctx context.Context, input catalogapp.BrandInput) (*catalogapp.BrandResponse, error)
	Update(ctx context.Context, id uuid.UUID, input catalogapp.BrandInput) (*catalogapp.BrandResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BrandHandler handles brand HTTP requests
type BrandHandler struct {
	BaseHandler
	brandService BrandService
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brandService BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

// List godoc
//
//	@Summary		List brands
//	@Description	Admins also see inactive brands
//	@Tags			brands
//	@ID				listBrands
//	@Produce		json
//	@Param			search		query		string	false	"Name contains"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[catalogapp.BrandResponse]
//	@Router			/brands [get]
func (h *BrandHandler) List(c *gin.Context) {
	var q dto.PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	brands, total, err := h.brandService.List(c.Request.Context(), c.Query("search"), !middleware.CanManage(c), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, brands, total, q.Page, q.PageSize)
}

// GetByID godoc
//
//	@Summary		Get brand by ID
//	@Tags			brands
//	@ID				getBrand
//	@Produce		json
//	@Param			id	path		string	true	"Brand ID"	format(uuid)
//	@Success		200	{object}	APIResponse[catalogapp.BrandResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/brands/{id} [get]
func (h *BrandHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	brand, err := h.brandService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Create godoc
//
//	@Summary		Create a brand
//	@Tags			brands
//	@ID				createBrand
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BrandRequest	true	"Brand"
//	@Success		201		{object}	APIResponse[catalogapp.BrandResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/brands [post]
func (h *BrandHandler) Create(c *gin.Context) {
	var req BrandRequest
	if !h.bindJSON(c, &req) {
		return
	}
	brand, err := h.brandService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, brand)
}

// Update godoc
//
//	@Summary		Update a brand
//	@Tags			brands
//	@ID				updateBrand
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Brand ID"	format(uuid)
//	@Param			request	body		BrandRequest	true	"Brand"
//	@Success		200		{object}	APIResponse[catalogapp.BrandResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/brands/{id} [put]
func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req BrandRequest
	if !h.bindJSON(c, &req) {
		return
	}
	brand, err := h.brandService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Delete godoc
//
//	@Summary		Delete a brand
//	@Description	Products of the brand keep existing without one
//	@Tags			brands
//	@ID				deleteBrand
//	@Param			id	path	string	true	"Brand ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/brands/{id} [delete]
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.brandService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (r BrandRequest) toInput() catalogapp.BrandInput {
	return catalogapp.BrandInput{
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}
