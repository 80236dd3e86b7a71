package catalog

import (
	"context"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	// FindAll filters on "is_active" and Search (name)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, int64, error)
	// FindChildren returns active direct children of a category
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Category, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasProducts(ctx context.Context, id uuid.UUID) (bool, error)
}

// BrandRepository defines the interface for brand persistence
type BrandRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Brand, int64, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, brand *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter contains filter options for the product listing
type ProductFilter struct {
	shared.Filter
	CategoryID   *uuid.UUID
	CategorySlug string
	BrandID      *uuid.UUID
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	IsFeatured   *bool
	IsOnSale     *bool
	// ActiveOnly hides inactive products (public listing)
	ActiveOnly bool
}

// ProductRepository defines the interface for product persistence.
// Find methods load images, variations, category, brand and rating summary.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	AddImage(ctx context.Context, image *ProductImage) error
	FindImage(ctx context.Context, productID, imageID uuid.UUID) (*ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error

	SaveVariation(ctx context.Context, variation *ProductVariation) error
	FindVariation(ctx context.Context, productID, variationID uuid.UUID) (*ProductVariation, error)
	DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductReview, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]ProductReview, int64, error)
	Exists(ctx context.Context, productID, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, review *ProductReview) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// HeroBannerRepository defines the interface for banner persistence
type HeroBannerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HeroBanner, error)
	FindAll(ctx context.Context, activeOnly bool) ([]HeroBanner, error)
	Save(ctx context.Context, banner *HeroBanner) error
	Delete(ctx context.Context, id uuid.UUID) error
}
