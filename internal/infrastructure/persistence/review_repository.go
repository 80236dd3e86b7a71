package persistence

import (
	"context"
	"errors"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

type reviewRow struct {
	catalog.ProductReview
	UserName string
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductReview, error) {
	var row reviewRow
	err := r.withAuthor(ctx).Where("product_reviews.id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	review := row.ProductReview
	review.UserName = row.UserName
	return &review, nil
}

// FindByProduct lists reviews of a product, newest first by default
func (r *GormReviewRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]catalog.ProductReview, int64, error) {
	filter.Normalize()
	var total int64
	if err := r.db.WithContext(ctx).Model(&catalog.ProductReview{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field := ValidateSortField(filter.OrderBy, ReviewSortFields, "created_at")
	var rows []reviewRow
	if err := r.withAuthor(ctx).
		Where("product_reviews.product_id = ?", productID).
		Order("product_reviews." + field + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	reviews := make([]catalog.ProductReview, len(rows))
	for i, row := range rows {
		reviews[i] = row.ProductReview
		reviews[i].UserName = row.UserName
	}
	return reviews, total, nil
}

func (r *GormReviewRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("product_reviews").
		Select("product_reviews.*, users.full_name AS user_name").
		Joins("LEFT JOIN users ON users.id = product_reviews.user_id")
}

// Exists reports whether the user already reviewed the product
func (r *GormReviewRepository) Exists(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.ProductReview{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores a new review
func (r *GormReviewRepository) Create(ctx context.Context, review *catalog.ProductReview) error {
	return translateUnique(r.db.WithContext(ctx).Create(review).Error, "You have already reviewed this product.")
}

// Delete deletes a review
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductReview{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReviewRepository implements ReviewRepository
var _ catalog.ReviewRepository = (*GormReviewRepository)(nil)
