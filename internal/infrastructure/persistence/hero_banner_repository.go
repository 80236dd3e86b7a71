package persistence

import (
	"context"
	"errors"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHeroBannerRepository implements HeroBannerRepository using GORM
type GormHeroBannerRepository struct {
	db *gorm.DB
}

// NewGormHeroBannerRepository creates a new GormHeroBannerRepository
func NewGormHeroBannerRepository(db *gorm.DB) *GormHeroBannerRepository {
	return &GormHeroBannerRepository{db: db}
}

// FindByID finds a banner by ID
func (r *GormHeroBannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.HeroBanner, error) {
	var banner catalog.HeroBanner
	if err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &banner, nil
}

// FindAll lists banners by display order, newest first within the same position
func (r *GormHeroBannerRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.HeroBanner, error) {
	query := r.db.WithContext(ctx).Model(&catalog.HeroBanner{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var banners []catalog.HeroBanner
	err := query.Order("display_order ASC, created_at DESC").Find(&banners).Error
	return banners, err
}

// Save creates or updates a banner
func (r *GormHeroBannerRepository) Save(ctx context.Context, banner *catalog.HeroBanner) error {
	return r.db.WithContext(ctx).Save(banner).Error
}

// Delete deletes a banner
func (r *GormHeroBannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.HeroBanner{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormHeroBannerRepository implements HeroBannerRepository
var _ catalog.HeroBannerRepository = (*GormHeroBannerRepository)(nil)
