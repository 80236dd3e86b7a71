package handler

import (
	"context"

	"github.com/adfinitum/backend/internal/application/marketing"
	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeroSlideService manages homepage hero slides
type HeroSlideService interface {
	List(ctx context.Context, activeOnly bool) ([]marketing.SlideResponse, error)
	Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*marketing.SlideResponse, error)
	Create(ctx context.Context, input marketing.SlideInput) (*marketing.SlideResponse, error)
	Update(ctx context.Context, id uuid.UUID, input marketing.SlideInput) (*marketing.SlideResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadMedia(ctx context.Context, id uuid.UUID, kind string, upload *appshared.Upload) (*marketing.SlideResponse, error)
}

// HeroSlideRequest is the create/update payload for a slide
type HeroSlideRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Subtitle       string   `json:"subtitle" binding:"max=300"`
	Description    string   `json:"description"`
	CTAText        string   `json:"cta_text" binding:"max=50"`
	CTALink        string   `json:"cta_link" binding:"omitempty,max=500"`
	Badge          string   `json:"badge" binding:"max=50"`
	BgColor        string   `json:"bg_color" binding:"max=100"`
	OverlayColor   string   `json:"overlay_color" binding:"max=50"`
	OverlayOpacity *float64 `json:"overlay_opacity" binding:"omitempty,gte=0,lte=1"`
	TextColor      string   `json:"text_color" binding:"max=50"`
	Align          string   `json:"align" binding:"omitempty,oneof=left center right"`
	IsActive       *bool    `json:"is_active"`
	Order          int      `json:"order" binding:"gte=0"`
	Duration       int      `json:"duration" binding:"gte=0"`
}

// HeroSlideMediaForm selects the media slot of an upload
type HeroSlideMediaForm struct {
	Kind string `form:"kind" binding:"required,oneof=image mobile_image video"`
}

// HeroSlideHandler handles hero slide HTTP requests
type HeroSlideHandler struct {
	BaseHandler
	slideService HeroSlideService
}

// NewHeroSlideHandler creates a new HeroSlideHandler
func NewHeroSlideHandler(slideService HeroSlideService) *HeroSlideHandler {
	return &HeroSlideHandler{slideService: slideService}
}

// List godoc
//
//	@Summary		List hero slides
//	@Description	Admins see every slide, everyone else the active ones
//	@Tags			hero-slides
//	@ID				listHeroSlides
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]marketing.SlideResponse]
//	@Router			/hero-slides [get]
func (h *HeroSlideHandler) List(c *gin.Context) {
	slides, err := h.slideService.List(c.Request.Context(), !middleware.CanManage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, slides)
}

// GetByID godoc
//
//	@Summary		Get hero slide by ID
//	@Tags			hero-slides
//	@ID				getHeroSlide
//	@Produce		json
//	@Param			id	path		string	true	"Slide ID"	format(uuid)
//	@Success		200	{object}	APIResponse[marketing.SlideResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/hero-slides/{id} [get]
func (h *HeroSlideHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	slide, err := h.slideService.Get(c.Request.Context(), id, !middleware.CanManage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, slide)
}

// Create godoc
//
//	@Summary		Create a hero slide
//	@Tags			hero-slides
//	@ID				createHeroSlide
//	@Accept			json
//	@Produce		json
//	@Param			request	body		HeroSlideRequest	true	"Slide"
//	@Success		201		{object}	APIResponse[marketing.SlideResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-slides [post]
func (h *HeroSlideHandler) Create(c *gin.Context) {
	var req HeroSlideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	slide, err := h.slideService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, slide)
}

// Update godoc
//
//	@Summary		Update a hero slide
//	@Description	Media slots are kept
//	@Tags			hero-slides
//	@ID				updateHeroSlide
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Slide ID"	format(uuid)
//	@Param			request	body		HeroSlideRequest	true	"Slide"
//	@Success		200		{object}	APIResponse[marketing.SlideResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-slides/{id} [put]
func (h *HeroSlideHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req HeroSlideRequest
	if !h.bindJSON(c, &req) {
		return
	}
	slide, err := h.slideService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, slide)
}

// Delete godoc
//
//	@Summary		Delete a hero slide
//	@Tags			hero-slides
//	@ID				deleteHeroSlide
//	@Param			id	path	string	true	"Slide ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-slides/{id} [delete]
func (h *HeroSlideHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.slideService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadMedia godoc
//
//	@Summary		Upload slide media
//	@Tags			hero-slides
//	@ID				uploadHeroSlideMedia
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Slide ID"	format(uuid)
//	@Param			kind	formData	string	true	"image, mobile_image or video"
//	@Param			file	formData	file	true	"Media file"
//	@Success		200		{object}	APIResponse[marketing.SlideResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/hero-slides/{id}/media [post]
func (h *HeroSlideHandler) UploadMedia(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var form HeroSlideMediaForm
	if !h.bindForm(c, &form) {
		return
	}
	upload, closeFile, err := formUpload(c, "file")
	if err != nil {
		h.FieldError(c, "file", "The submitted data was not a file.")
		return
	}
	defer closeFile()

	slide, err := h.slideService.UploadMedia(c.Request.Context(), id, form.Kind, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, slide)
}

func (r HeroSlideRequest) toInput() marketing.SlideInput {
	return marketing.SlideInput{
		Title:          r.Title,
		Subtitle:       r.Subtitle,
		Description:    r.Description,
		CTAText:        r.CTAText,
		CTALink:        r.CTALink,
		Badge:          r.Badge,
		BgColor:        r.BgColor,
		OverlayColor:   r.OverlayColor,
		OverlayOpacity: r.OverlayOpacity,
		TextColor:      r.TextColor,
		Align:          r.Align,
		IsActive:       r.IsActive,
		Order:          r.Order,
		Duration:       r.Duration,
	}
}
