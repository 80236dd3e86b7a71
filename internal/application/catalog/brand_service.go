package catalog

import (
	"context"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BrandService handles brand operations
type BrandService struct {
	brands catalog.BrandRepository
	logger *zap.Logger
}

// NewBrandService creates a new BrandService
func NewBrandService(brands catalog.BrandRepository, logger *zap.Logger) *BrandService {
	return &BrandService{brands: brands, logger: logger}
}

// List returns brands ordered by name
func (s *BrandService) List(ctx context.Context, search string, activeOnly bool, page, pageSize int) ([]BrandResponse, int64, error) {
	query := shared.Filter{Page: page, PageSize: pageSize, Search: search}
	if activeOnly {
		query = query.OnlyActive()
	}
	brands, total, err := s.brands.FindAll(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	result := make([]BrandResponse, 0, len(brands))
	for i := range brands {
		result = append(result, ToBrandResponse(&brands[i]))
	}
	return result, total, nil
}

// Get returns one brand
func (s *BrandService) Get(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

// Create creates a brand
func (s *BrandService) Create(ctx context.Context, input BrandInput) (*BrandResponse, error) {
	brand, err := catalog.NewBrand(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	brand.IsActive = boolOr(input.IsActive, true)
	if brand.Slug, err = uniqueSlug(ctx, brand.Name, s.brands.SlugExists, nil); err != nil {
		return nil, err
	}
	if err := s.brands.Save(ctx, brand); err != nil {
		return nil, err
	}
	s.logger.Info("Brand created", zap.String("brand_id", brand.ID.String()))
	resp := ToBrandResponse(brand)
	return &resp, nil
}

// Update changes a brand
func (s *BrandService) Update(ctx context.Context, id uuid.UUID, input BrandInput) (*BrandResponse, error) {
	brand, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	renamed := brand.Name != input.Name
	if err := brand.Update(input.Name, input.Description, boolOr(input.IsActive, brand.IsActive)); err != nil {
		return nil, err
	}
	if renamed {
		if brand.Slug, err = uniqueSlug(ctx, brand.Name, s.brands.SlugExists, &brand.ID); err != nil {
			return nil, err
		}
	}
	if err := s.brands.Save(ctx, brand); err != nil {
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

// Delete removes a brand; products keep existing without a brand
func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.brands.Delete(ctx, id)
}
