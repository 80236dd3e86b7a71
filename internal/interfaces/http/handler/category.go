package handler

import (
	"context"

	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CategoryService is the catalog category API
type CategoryService interface {
	List(ctx context.Context, filter catalogapp.CategoryListFilter) ([]catalogapp.CategoryResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*catalogapp.CategoryResponse, error)
	Create(ctx context.Context, input catalogapp.CategoryInput) (*catalogapp.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, input catalogapp.CategoryInput) (*catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	BaseHandler
	categoryService CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// List godoc
//
//	@Summary		List categories
//	@Description	Categories ordered by name, each with its active subcategories
//	@Tags			categories
//	@ID				listCategories
//	@Produce		json
//	@Param			search		query		string	false	"Name contains"
//	@Param			is_active	query		bool	false	"Active flag"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	PagedResponse[catalogapp.CategoryResponse]
//	@Router			/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var q CategoryListRequest
	if !h.bindQuery(c, &q) {
		return
	}
	categories, total, err := h.categoryService.List(c.Request.Context(), catalogapp.CategoryListFilter{
		Search:   q.Search,
		IsActive: queryBool(c, "is_active"),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, categories, total, q.Page, q.PageSize)
}

// GetByID godoc
//
//	@Summary		Get category by ID
//	@Tags			categories
//	@ID				getCategory
//	@Produce		json
//	@Param			id	path		string	true	"Category ID"	format(uuid)
//	@Success		200	{object}	APIResponse[catalogapp.CategoryResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	category, err := h.categoryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create godoc
//
//	@Summary		Create a category
//	@Tags			categories
//	@ID				createCategory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CategoryRequest	true	"Category"
//	@Success		201		{object}	APIResponse[catalogapp.CategoryResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/categories/create [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update godoc
//
//	@Summary		Update a category
//	@Tags			categories
//	@ID				updateCategory
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Category ID"	format(uuid)
//	@Param			request	body		CategoryRequest	true	"Category"
//	@Success		200		{object}	APIResponse[catalogapp.CategoryResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/categories/{id}/update [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete godoc
//
//	@Summary		Delete a category
//	@Description	Categories that still hold products cannot be deleted
//	@Tags			categories
//	@ID				deleteCategory
//	@Param			id	path	string	true	"Category ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/categories/{id}/delete [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (r CategoryRequest) toInput() catalogapp.CategoryInput {
	return catalogapp.CategoryInput{
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
		IsActive:    r.IsActive,
	}
}
