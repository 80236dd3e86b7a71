package catalog

import (
	"context"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateReview is returned when the user already reviewed the product
var ErrDuplicateReview = shared.ErrAlreadyExists.WithMessage("You have already reviewed this product.")

// ReviewService handles product reviews
type ReviewService struct {
	reviews  catalog.ReviewRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviews catalog.ReviewRepository, products catalog.ProductRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, logger: logger}
}

// List returns a product's reviews, newest first
func (s *ReviewService) List(ctx context.Context, productID uuid.UUID, page, pageSize int) (*ReviewListResult, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	filter := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "created_at", OrderDir: "desc"}
	filter.Normalize()
	reviews, total, err := s.reviews.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	items := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, toReviewResponse(&reviews[i]))
	}
	return &ReviewListResult{Reviews: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Create adds the user's review of an active product
func (s *ReviewService) Create(ctx context.Context, productID, userID uuid.UUID, input ReviewInput) (*ReviewResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.ErrNotFound
	}
	review, err := catalog.NewProductReview(productID, userID, input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}
	exists, err := s.reviews.Exists(ctx, productID, userID)
	if err != nil {
		return nil, fmt.Errorf("check review: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info("Review created",
		zap.String("product_id", productID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("rating", review.Rating),
	)
	resp := toReviewResponse(review)
	return &resp, nil
}

// Delete removes a review. Only its author or a manager may delete it.
func (s *ReviewService) Delete(ctx context.Context, productID, reviewID, userID uuid.UUID, canManage bool) error {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.ProductID != productID {
		return shared.ErrNotFound
	}
	if review.UserID != userID && !canManage {
		return shared.ErrForbidden.WithMessage("You cannot delete this review.")
	}
	return s.reviews.Delete(ctx, reviewID)
}
