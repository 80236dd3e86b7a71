package catalog

import (
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// ProductReview is a customer's rating of a product. One per product and user.
type ProductReview struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_user,priority:2"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"type:text"`
	UserName  string    `gorm:"-"`
}

// TableName returns the table name for GORM
func (ProductReview) TableName() string {
	return "product_reviews"
}

// NewProductReview validates and creates a review
func NewProductReview(productID, userID uuid.UUID, rating int, comment string) (*ProductReview, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, shared.NewFieldError("rating", "Ensure this value is between 1 and 5.")
	}
	return &ProductReview{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
	}, nil
}
