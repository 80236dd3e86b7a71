package persistence

import (
	"context"
	"errors"

	"github.com/adfinitum/backend/internal/domain/marketing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHeroSlideRepository implements HeroSlideRepository using GORM
type GormHeroSlideRepository struct {
	db *gorm.DB
}

// NewGormHeroSlideRepository creates a new GormHeroSlideRepository
func NewGormHeroSlideRepository(db *gorm.DB) *GormHeroSlideRepository {
	return &GormHeroSlideRepository{db: db}
}

// FindByID finds a slide; with activeOnly, inactive slides are not found
func (r *GormHeroSlideRepository) FindByID(ctx context.Context, id uuid.UUID, activeOnly bool) (*marketing.HeroSlide, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var slide marketing.HeroSlide
	if err := query.First(&slide).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, marketing.ErrSlideNotFound
		}
		return nil, err
	}
	return &slide, nil
}

// FindAll lists slides by display order, then creation time
func (r *GormHeroSlideRepository) FindAll(ctx context.Context, activeOnly bool) ([]marketing.HeroSlide, error) {
	query := r.db.WithContext(ctx).Model(&marketing.HeroSlide{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var slides []marketing.HeroSlide
	err := query.Order("display_order ASC, created_at ASC").Find(&slides).Error
	return slides, err
}

// Save creates or updates a slide
func (r *GormHeroSlideRepository) Save(ctx context.Context, slide *marketing.HeroSlide) error {
	return r.db.WithContext(ctx).Save(slide).Error
}

// Delete deletes a slide
func (r *GormHeroSlideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&marketing.HeroSlide{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return marketing.ErrSlideNotFound
	}
	return nil
}

// Ensure GormHeroSlideRepository implements HeroSlideRepository
var _ marketing.HeroSlideRepository = (*GormHeroSlideRepository)(nil)
