package handler

import (
	catalogapp "github.com/adfinitum/backend/internal/application/catalog"
	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================
// Catalog Request DTOs
// =====================

// ProductRequest is the admin create/update payload for a product
type ProductRequest struct {
	Name           string           `json:"name" binding:"required,max=255"`
	Description    string           `json:"description"`
	CategoryID     uuid.UUID        `json:"category_id" binding:"required"`
	BrandID        *uuid.UUID       `json:"brand_id"`
	Price          *decimal.Decimal `json:"price" binding:"required"`
	DiscountPrice  *decimal.Decimal `json:"discount_price"`
	SKU            string           `json:"sku" binding:"omitempty,max=100"`
	StockQuantity  int              `json:"stock_quantity" binding:"gte=0"`
	Availability   string           `json:"availability" binding:"omitempty,oneof=in_stock preorder coming_soon"`
	IsActive       *bool            `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
	SEOTitle       string           `json:"seo_title" binding:"omitempty,max=255"`
	SEODescription string           `json:"seo_description"`
}

func (r ProductRequest) toInput() catalogapp.ProductInput {
	return catalogapp.ProductInput{
		Name:           r.Name,
		Description:    r.Description,
		CategoryID:     r.CategoryID,
		BrandID:        r.BrandID,
		Price:          *r.Price,
		DiscountPrice:  r.DiscountPrice,
		SKU:            r.SKU,
		StockQuantity:  r.StockQuantity,
		Availability:   r.Availability,
		IsActive:       r.IsActive,
		IsFeatured:     r.IsFeatured,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
	}
}

// ProductListRequest is the public product list query
type ProductListRequest struct {
	dto.PageQuery
	Category string `form:"category"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
}

// VariationRequest is the create/update payload for a product variation
type VariationRequest struct {
	Name          string           `json:"name" binding:"required,max=100"`
	SKU           string           `json:"sku" binding:"required,max=100"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int              `json:"stock_quantity" binding:"gte=0"`
	IsActive      *bool            `json:"is_active"`
}

func (r VariationRequest) toInput() catalogapp.VariationInput {
	return catalogapp.VariationInput{
		Name:          r.Name,
		SKU:           r.SKU,
		Price:         *r.Price,
		StockQuantity: r.StockQuantity,
		IsActive:      r.IsActive,
	}
}

// ProductImageForm is the multipart form of an image upload
type ProductImageForm struct {
	AltText    string `form:"alt_text" binding:"omitempty,max=255"`
	IsFeatured bool   `form:"is_featured"`
}

// ReviewRequest is the review form
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// CategoryRequest is the create/update payload for a category
type CategoryRequest struct {
	Name        string     `json:"name" binding:"required,max=100"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent"`
	IsActive    *bool      `json:"is_active"`
}

// CategoryListRequest is the category list query
type CategoryListRequest struct {
	dto.PageQuery
	Search string `form:"search"`
}

// BrandRequest is the create/update payload for a brand
type BrandRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// HeroBannerForm is the multipart create/update form of a banner
type HeroBannerForm struct {
	Title        string `form:"title" binding:"required,max=200"`
	Subtitle     string `form:"subtitle" binding:"omitempty,max=300"`
	CTAText      string `form:"cta_text" binding:"omitempty,max=50"`
	CTALink      string `form:"cta_link" binding:"omitempty,url"`
	IsActive     *bool  `form:"is_active"`
	DisplayOrder int    `form:"display_order" binding:"gte=0"`
}
