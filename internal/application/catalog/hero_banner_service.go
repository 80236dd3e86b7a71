package catalog

import (
	"context"
	"fmt"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeroBannerService manages storefront banners
type HeroBannerService struct {
	banners catalog.HeroBannerRepository
	storage appshared.ObjectStorage
	logger  *zap.Logger
}

// NewHeroBannerService creates a new HeroBannerService
func NewHeroBannerService(banners catalog.HeroBannerRepository, storage appshared.ObjectStorage, logger *zap.Logger) *HeroBannerService {
	return &HeroBannerService{banners: banners, storage: storage, logger: logger}
}

// List returns banners ordered by display order, then newest
func (s *HeroBannerService) List(ctx context.Context, activeOnly bool) ([]HeroBannerResponse, error) {
	banners, err := s.banners.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list hero banners: %w", err)
	}
	result := make([]HeroBannerResponse, 0, len(banners))
	for i := range banners {
		result = append(result, ToHeroBannerResponse(&banners[i], s.storage))
	}
	return result, nil
}

// Get returns a banner; inactive banners are hidden when activeOnly is set
func (s *HeroBannerService) Get(ctx context.Context, id uuid.UUID, activeOnly bool) (*HeroBannerResponse, error) {
	banner, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activeOnly && !banner.IsActive {
		return nil, shared.ErrNotFound
	}
	resp := ToHeroBannerResponse(banner, s.storage)
	return &resp, nil
}

// Create uploads the banner image and stores the banner
func (s *HeroBannerService) Create(ctx context.Context, input HeroBannerInput) (*HeroBannerResponse, error) {
	if input.Image == nil {
		return nil, shared.NewFieldError("image", "No file was submitted.")
	}
	key, err := s.upload(ctx, *input.Image)
	if err != nil {
		return nil, err
	}
	banner, err := catalog.NewHeroBanner(bannerDetails(input, key, true))
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	if err := s.banners.Save(ctx, banner); err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	s.logger.Info("Hero banner created", zap.String("banner_id", banner.ID.String()))
	resp := ToHeroBannerResponse(banner, s.storage)
	return &resp, nil
}

// Update changes a banner, replacing its image when a new one is uploaded
func (s *HeroBannerService) Update(ctx context.Context, id uuid.UUID, input HeroBannerInput) (*HeroBannerResponse, error) {
	banner, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldKey := banner.Image
	key := oldKey
	if input.Image != nil {
		if key, err = s.upload(ctx, *input.Image); err != nil {
			return nil, err
		}
	}
	if err := banner.Update(bannerDetails(input, key, banner.IsActive)); err != nil {
		if key != oldKey {
			s.removeObject(ctx, key)
		}
		return nil, err
	}
	if err := s.banners.Save(ctx, banner); err != nil {
		return nil, err
	}
	if key != oldKey {
		s.removeObject(ctx, oldKey)
	}
	resp := ToHeroBannerResponse(banner, s.storage)
	return &resp, nil
}

// Delete removes a banner and its image
func (s *HeroBannerService) Delete(ctx context.Context, id uuid.UUID) error {
	banner, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.banners.Delete(ctx, id); err != nil {
		return err
	}
	s.removeObject(ctx, banner.Image)
	return nil
}

func (s *HeroBannerService) upload(ctx context.Context, upload appshared.Upload) (string, error) {
	if !appshared.AllowedImageTypes[upload.ContentType] {
		return "", shared.NewFieldError("image", "Upload a valid image.")
	}
	key := appshared.ObjectKey("hero_banners", upload.Filename)
	if err := s.storage.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return "", fmt.Errorf("upload hero banner: %w", err)
	}
	return key, nil
}

func (s *HeroBannerService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

func bannerDetails(input HeroBannerInput, image string, activeDefault bool) catalog.HeroBannerDetails {
	return catalog.HeroBannerDetails{
		Title:        input.Title,
		Subtitle:     input.Subtitle,
		Image:        image,
		CTAText:      input.CTAText,
		CTALink:      input.CTALink,
		IsActive:     boolOr(input.IsActive, activeDefault),
		DisplayOrder: input.DisplayOrder,
	}
}
