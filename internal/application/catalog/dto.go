package catalog

import (
	"time"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryInput is the create/update payload for a category
type CategoryInput struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
	IsActive    *bool
}

// CategoryResponse represents a category with its active subcategories
type CategoryResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Parent        *uuid.UUID         `json:"parent"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"is_active"`
	Subcategories []CategoryResponse `json:"subcategories"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CategoryListFilter contains the category list query
type CategoryListFilter struct {
	Search   string
	IsActive *bool
	Page     int
	PageSize int
}

// BrandInput is the create/update payload for a brand
type BrandInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// BrandResponse represents a brand
type BrandResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductInput is the create/update payload for a product
type ProductInput struct {
	Name           string
	Description    string
	CategoryID     uuid.UUID
	BrandID        *uuid.UUID
	Price          decimal.Decimal
	DiscountPrice  *decimal.Decimal
	SKU            string
	StockQuantity  int
	Availability   string
	IsActive       *bool
	IsFeatured     bool
	SEOTitle       string
	SEODescription string
}

// ProductListQuery contains the public product list query.
// Category accepts either a UUID or a slug.
type ProductListQuery struct {
	Category   string
	BrandID    *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsFeatured *bool
	IsOnSale   *bool
	Search     string
	Ordering   string
	Page       int
	PageSize   int
}

// CategorySummary is the category embedded in a product
type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// BrandSummary is the brand embedded in a product
type BrandSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ImageResponse represents a product image
type ImageResponse struct {
	ID         uuid.UUID `json:"id"`
	Image      string    `json:"image"`
	AltText    string    `json:"alt_text"`
	IsFeatured bool      `json:"is_featured"`
	CreatedAt  time.Time `json:"created_at"`
}

// VariationInput is the create/update payload for a product variation
type VariationInput struct {
	Name          string
	SKU           string
	Price         decimal.Decimal
	StockQuantity int
	IsActive      *bool
}

// VariationResponse represents a product variation
type VariationResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	IsActive      bool            `json:"is_active"`
}

// ProductResponse represents a product with its relations
type ProductResponse struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Slug           string              `json:"slug"`
	Description    string              `json:"description"`
	Category       *CategorySummary    `json:"category"`
	Brand          *BrandSummary       `json:"brand"`
	Price          decimal.Decimal     `json:"price"`
	DiscountPrice  *decimal.Decimal    `json:"discount_price"`
	SKU            *string             `json:"sku"`
	StockQuantity  int                 `json:"stock_quantity"`
	Availability   string              `json:"availability"`
	IsActive       bool                `json:"is_active"`
	IsFeatured     bool                `json:"is_featured"`
	IsOnSale       bool                `json:"is_on_sale"`
	SEOTitle       string              `json:"seo_title"`
	SEODescription string              `json:"seo_description"`
	Images         []ImageResponse     `json:"images"`
	Variations     []VariationResponse `json:"variations"`
	AverageRating  float64             `json:"average_rating"`
	ReviewCount    int64               `json:"review_count"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ProductListResult is a page of products
type ProductListResult struct {
	Products []ProductResponse
	Total    int64
	Page     int
	PageSize int
}

// ReviewInput is the review form
type ReviewInput struct {
	Rating  int
	Comment string
}

// ReviewResponse represents a product review
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product"`
	UserID    uuid.UUID `json:"user"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewListResult is a page of reviews
type ReviewListResult struct {
	Reviews  []ReviewResponse
	Total    int64
	Page     int
	PageSize int
}

// HeroBannerInput is the create/update payload for a banner.
// Image is optional on update; the stored image is kept when nil.
type HeroBannerInput struct {
	Title        string
	Subtitle     string
	CTAText      string
	CTALink      string
	IsActive     *bool
	DisplayOrder int
	Image        *appshared.Upload
}

// HeroBannerResponse represents a banner with an absolute image URL
type HeroBannerResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	Image        string    `json:"image"`
	CTAText      string    `json:"cta_text"`
	CTALink      string    `json:"cta_link"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category, including loaded subcategories
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Parent:        c.ParentID,
		Description:   c.Description,
		IsActive:      c.IsActive,
		Subcategories: make([]CategoryResponse, 0, len(c.Subcategories)),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for i := range c.Subcategories {
		resp.Subcategories = append(resp.Subcategories, ToCategoryResponse(&c.Subcategories[i]))
	}
	return resp
}

// ToBrandResponse converts a domain brand
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{
		ID:          b.ID,
		Name:        b.Name,
		Slug:        b.Slug,
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
	}
}

// ToProductResponse converts a domain product; image keys become URLs
func ToProductResponse(p *catalog.Product, storage appshared.ObjectStorage) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		DiscountPrice:  p.DiscountPrice,
		SKU:            p.SKU,
		StockQuantity:  p.StockQuantity,
		Availability:   string(p.Availability),
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		IsOnSale:       p.IsOnSale,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		Images:         make([]ImageResponse, 0, len(p.Images)),
		Variations:     make([]VariationResponse, 0, len(p.Variations)),
		AverageRating:  p.AverageRating,
		ReviewCount:    p.ReviewCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Category != nil {
		resp.Category = &CategorySummary{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	if p.Brand != nil {
		resp.Brand = &BrandSummary{ID: p.Brand.ID, Name: p.Brand.Name, Slug: p.Brand.Slug}
	}
	for i := range p.Images {
		resp.Images = append(resp.Images, toImageResponse(&p.Images[i], storage))
	}
	for i := range p.Variations {
		resp.Variations = append(resp.Variations, toVariationResponse(&p.Variations[i]))
	}
	return resp
}

func toImageResponse(img *catalog.ProductImage, storage appshared.ObjectStorage) ImageResponse {
	return ImageResponse{
		ID:         img.ID,
		Image:      storage.URL(img.StorageKey),
		AltText:    img.AltText,
		IsFeatured: img.IsFeatured,
		CreatedAt:  img.CreatedAt,
	}
}

func toVariationResponse(v *catalog.ProductVariation) VariationResponse {
	return VariationResponse{
		ID:            v.ID,
		Name:          v.Name,
		Price:         v.Price,
		StockQuantity: v.StockQuantity,
		SKU:           v.SKU,
		IsActive:      v.IsActive,
	}
}

func toReviewResponse(r *catalog.ProductReview) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// ToHeroBannerResponse converts a domain banner
func ToHeroBannerResponse(b *catalog.HeroBanner, storage appshared.ObjectStorage) HeroBannerResponse {
	return HeroBannerResponse{
		ID:           b.ID,
		Title:        b.Title,
		Subtitle:     b.Subtitle,
		Image:        storage.URL(b.Image),
		CTAText:      b.CTAText,
		CTALink:      b.CTALink,
		IsActive:     b.IsActive,
		DisplayOrder: b.DisplayOrder,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
