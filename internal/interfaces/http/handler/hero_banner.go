package handler

import (
	"context"

	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeroBannerService is the catalog banner API
type HeroBannerService interface {
	List(ctx context.Context, activeOnly bool) ([]catalogapp.HeroBannerResponse, error)
	Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*catalogapp.HeroBannerResponse, error)
	Create(ctx context.Context, input catalogapp.HeroBannerInput) (*catalogapp.HeroBannerResponse, error)
	Update(ctx context.Context, id uuid.UUID, input catalogapp.HeroBannerInput) (*catalogapp.HeroBannerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HeroBannerHandler handles hero banner HTTP requests
type HeroBannerHandler struct {
	BaseHandler
	bannerService HeroBannerService
}

// NewHeroBannerHandler creates a new HeroBannerHandler
func NewHeroBannerHandler(bannerService HeroBannerService) *HeroBannerHandler {
	return &HeroBannerHandler{bannerService: bannerService}
}

// List godoc
//
//	@Summary		List hero banners
//	@Description	Active banners ordered by display order; admins also see inactive ones
//	@Tags			hero-banners
//	@ID				listHeroBanners
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]catalogapp.HeroBannerResponse]
//	@Router			/hero-banners [get]
func (h *HeroBannerHandler) List(c *gin.Context) {
	banners, err := h.bannerService.List(c.Request.Context(), !middleware.CanManage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banners)
}

// GetByID godoc
//
//	@Summary		Get hero banner by ID
//	@Tags			hero-banners
//	@ID				getHeroBanner
//	@Produce		json
//	@Param			id	path		string	true	"Banner ID"	format(uuid)
//	@Success		200	{object}	APIResponse[catalogapp.HeroBannerResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/hero-banners/{id} [get]
func (h *HeroBannerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	banner, err := h.bannerService.Get(c.Request.Context(), id, !middleware.CanManage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banner)
}

// Create godoc
//
//	@Summary		Create a hero banner
//	@Tags			hero-banners
//	@ID				createHeroBanner
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title			formData	string	true	"Title"
//	@Param			subtitle		formData	string	false	"Subtitle"
//	@Param			cta_text		formData	string	false	"Button text"
//	@Param			cta_link		formData	string	false	"Button link"
//	@Param			is_active		formData	bool	false	"Active flag"
//	@Param			display_order	formData	int		false	"Display order"
//	@Param			image			formData	file	true	"Banner image"
//	@Success		201				{object}	APIResponse[catalogapp.HeroBannerResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-banners/create [post]
func (h *HeroBannerHandler) Create(c *gin.Context) {
	input, closeFile, ok := h.bindBanner(c)
	if !ok {
		return
	}
	defer closeFile()

	banner, err := h.bannerService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, banner)
}

// Update godoc
//
//	@Summary		Update a hero banner
//	@Description	The stored image is kept when no new file is sent
//	@Tags			hero-banners
//	@ID				updateHeroBanner
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id				path		string	true	"Banner ID"	format(uuid)
//	@Param			title			formData	string	true	"Title"
//	@Param			subtitle		formData	string	false	"Subtitle"
//	@Param			cta_text		formData	string	false	"Button text"
//	@Param			cta_link		formData	string	false	"Button link"
//	@Param			is_active		formData	bool	false	"Active flag"
//	@Param			display_order	formData	int		false	"Display order"
//	@Param			image			formData	file	false	"Banner image"
//	@Success		200				{object}	APIResponse[catalogapp.HeroBannerResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-banners/{id}/update [put]
func (h *HeroBannerHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	input, closeFile, ok := h.bindBanner(c)
	if !ok {
		return
	}
	defer closeFile()

	banner, err := h.bannerService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banner)
}

// Delete godoc
//
//	@Summary		Delete a hero banner
//	@Tags			hero-banners
//	@ID				deleteHeroBanner
//	@Param			id	path	string	true	"Banner ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-banners/{id}/delete [delete]
func (h *HeroBannerHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.bannerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *HeroBannerHandler) bindBanner(c *gin.Context) (catalogapp.HeroBannerInput, func(), bool) {
	var form HeroBannerForm
	if !h.bindForm(c, &form) {
		return catalogapp.HeroBannerInput{}, nil, false
	}
	upload, closeFile, err := formUpload(c, "image")
	if err != nil {
		h.FieldError(c, "image", "The submitted data was not a file.")
		return catalogapp.HeroBannerInput{}, nil, false
	}
	return catalogapp.HeroBannerInput{
		Title:        form.Title,
		Subtitle:     form.Subtitle,
		CTAText:      form.CTAText,
		CTALink:      form.CTALink,
		IsActive:     form.IsActive,
		DisplayOrder: form.DisplayOrder,
		Image:        upload,
	}, closeFile, true
}
