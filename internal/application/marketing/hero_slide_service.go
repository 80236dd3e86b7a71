// Package marketing manages storefront hero slides.
package marketing

import (
	"context"
	"fmt"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/marketing"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeroSlideService manages hero slides and their media
type HeroSlideService struct {
	slides  marketing.HeroSlideRepository
	storage appshared.ObjectStorage
	logger  *zap.Logger
}

// NewHeroSlideService creates a new HeroSlideService
func NewHeroSlideService(slides marketing.HeroSlideRepository, storage appshared.ObjectStorage, logger *zap.Logger) *HeroSlideService {
	return &HeroSlideService{slides: slides, storage: storage, logger: logger}
}

// List returns slides by display order; activeOnly hides inactive ones
func (s *HeroSlideService) List(ctx context.Context, activeOnly bool) ([]SlideResponse, error) {
	slides, err := s.slides.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list hero slides: %w", err)
	}
	result := make([]SlideResponse, 0, len(slides))
	for i := range slides {
		result = append(result, ToSlideResponse(&slides[i], s.storage))
	}
	return result, nil
}

// Get returns one slide
func (s *HeroSlideService) Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*SlideResponse, error) {
	slide, err := s.slides.FindByID(ctx, id, activeOnly)
	if err != nil {
		return nil, err
	}
	resp := ToSlideResponse(slide, s.storage)
	return &resp, nil
}

// Create stores a new slide. Slides are active unless stated otherwise.
func (s *HeroSlideService) Create(ctx context.Context, input SlideInput) (*SlideResponse, error) {
	slide, err := marketing.NewHeroSlide(input.details(true))
	if err != nil {
		return nil, err
	}
	if err := s.slides.Save(ctx, slide); err != nil {
		return nil, fmt.Errorf("save hero slide: %w", err)
	}
	s.logger.Info("Hero slide created", zap.String("slide_id", slide.ID.String()))
	resp := ToSlideResponse(slide, s.storage)
	return &resp, nil
}

// Update replaces the writable fields of a slide; media is kept
func (s *HeroSlideService) Update(ctx context.Context, id uuid.UUID, input SlideInput) (*SlideResponse, error) {
	slide, err := s.slides.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := slide.Update(input.details(slide.IsActive)); err != nil {
		return nil, err
	}
	if err := s.slides.Save(ctx, slide); err != nil {
		return nil, fmt.Errorf("save hero slide: %w", err)
	}
	resp := ToSlideResponse(slide, s.storage)
	return &resp, nil
}

// Delete removes a slide and its stored media
func (s *HeroSlideService) Delete(ctx context.Context, id uuid.UUID) error {
	slide, err := s.slides.FindByID(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.slides.Delete(ctx, id); err != nil {
		return err
	}
	for _, key := range []string{slide.Image, slide.MobileImage, slide.Video} {
		s.removeObject(ctx, key)
	}
	return nil
}

// UploadMedia stores a file in one of the slide's media slots,
// replacing what was there.
func (s *HeroSlideService) UploadMedia(ctx context.Context, id uuid.UUID, kind string, upload *appshared.Upload) (*SlideResponse, error) {
	mediaKind := marketing.MediaKind(kind)
	if !mediaKind.IsValid() {
		return nil, shared.NewFieldError("kind", "\""+kind+"\" is not a valid choice.")
	}
	if upload == nil {
		return nil, shared.NewFieldError("file", "No file was submitted.")
	}
	if mediaKind == marketing.MediaVideo {
		if !appshared.AllowedVideoTypes[upload.ContentType] {
			return nil, shared.NewFieldError("file", "Upload a valid video.")
		}
	} else if !appshared.AllowedImageTypes[upload.ContentType] {
		return nil, shared.NewFieldError("file", "Upload a valid image.")
	}

	slide, err := s.slides.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	key := appshared.ObjectKey("hero_slides/"+kind, upload.Filename)
	if err := s.storage.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("upload hero slide media: %w", err)
	}
	old, err := slide.SetMedia(mediaKind, key)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	if err := s.slides.Save(ctx, slide); err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("save hero slide: %w", err)
	}
	s.removeObject(ctx, old)

	s.logger.Info("Hero slide media uploaded",
		zap.String("slide_id", slide.ID.String()),
		zap.String("kind", kind),
	)
	resp := ToSlideResponse(slide, s.storage)
	return &resp, nil
}

func (s *HeroSlideService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}
