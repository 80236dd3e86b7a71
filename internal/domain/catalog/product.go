package catalog

import (
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Availability describes whether a product can be bought now
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityPreorder   Availability = "preorder"
	AvailabilityComingSoon Availability = "coming_soon"
)

// IsValid checks if the availability is valid
func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityInStock, AvailabilityPreorder, AvailabilityComingSoon:
		return true
	}
	return false
}

// Product is a sellable catalog item.
// It is the aggregate root for images and variations.
type Product struct {
	shared.BaseAggregateRoot
	Name           string           `gorm:"type:varchar(255);not null;index"`
	Slug           string           `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description    string           `gorm:"type:text;not null"`
	CategoryID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	BrandID        *uuid.UUID       `gorm:"type:uuid;index"`
	Price          decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	DiscountPrice  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	SKU            *string          `gorm:"column:sku;type:varchar(100);uniqueIndex"`
	StockQuantity  int              `gorm:"not null;default:0"`
	Availability   Availability     `gorm:"type:varchar(20);not null;default:'in_stock'"`
	IsActive       bool             `gorm:"not null"`
	IsFeatured     bool             `gorm:"not null;default:false"`
	IsOnSale       bool             `gorm:"not null;default:false"`
	SEOTitle       string           `gorm:"column:seo_title;type:varchar(255)"`
	SEODescription string           `gorm:"column:seo_description;type:text"`
	CreatedBy      *uuid.UUID       `gorm:"type:uuid"`

	Category      *Category          `gorm:"-"`
	Brand         *Brand             `gorm:"-"`
	Images        []ProductImage     `gorm:"-"`
	Variations    []ProductVariation `gorm:"-"`
	AverageRating float64            `gorm:"-"`
	ReviewCount   int64              `gorm:"-"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductDetails holds the writable fields of a product
type ProductDetails struct {
	Name           string
	Description    string
	CategoryID     uuid.UUID
	BrandID        *uuid.UUID
	Price          decimal.Decimal
	DiscountPrice  *decimal.Decimal
	SKU            string
	StockQuantity  int
	Availability   Availability
	IsActive       bool
	IsFeatured     bool
	SEOTitle       string
	SEODescription string
}

// NewProduct creates a product; the slug derives from the name
func NewProduct(details ProductDetails, createdBy *uuid.UUID) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CreatedBy:         createdBy,
	}
	if err := p.apply(details); err != nil {
		return nil, err
	}
	p.Slug = Slugify(p.Name)
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the writable fields
func (p *Product) Update(details ProductDetails) error {
	if err := p.apply(details); err != nil {
		return err
	}
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

func (p *Product) apply(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if err := validateName("name", name, 255); err != nil {
		return err
	}
	if strings.TrimSpace(d.Description) == "" {
		return shared.NewFieldError("description", "This field may not be blank.")
	}
	if d.CategoryID == uuid.Nil {
		return shared.NewFieldError("category_id", "This field is required.")
	}
	if d.Price.IsNegative() {
		return shared.NewFieldError("price", "Ensure this value is greater than or equal to 0.")
	}
	if d.DiscountPrice != nil && d.DiscountPrice.IsNegative() {
		return shared.NewFieldError("discount_price", "Ensure this value is greater than or equal to 0.")
	}
	if d.StockQuantity < 0 {
		return shared.NewFieldError("stock_quantity", "Ensure this value is greater than or equal to 0.")
	}
	availability := d.Availability
	if availability == "" {
		availability = AvailabilityInStock
	}
	if !availability.IsValid() {
		return shared.NewFieldError("availability", "\""+string(availability)+"\" is not a valid choice.")
	}

	p.Name = name
	p.Description = d.Description
	p.CategoryID = d.CategoryID
	p.BrandID = d.BrandID
	p.Price = d.Price.Round(2)
	p.DiscountPrice = nil
	if d.DiscountPrice != nil {
		dp := d.DiscountPrice.Round(2)
		p.DiscountPrice = &dp
	}
	p.SKU = nil
	if sku := strings.TrimSpace(d.SKU); sku != "" {
		p.SKU = &sku
	}
	p.StockQuantity = d.StockQuantity
	p.Availability = availability
	p.IsActive = d.IsActive
	p.IsFeatured = d.IsFeatured
	p.SEOTitle = d.SEOTitle
	p.SEODescription = d.SEODescription
	p.IsOnSale = p.computeOnSale()
	return nil
}

func (p *Product) computeOnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// EffectivePrice is the price a customer pays right now
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsOnSale {
		return *p.DiscountPrice
	}
	return p.Price
}

// FeaturedImage returns the first featured image, or the first image
func (p *Product) FeaturedImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsFeatured {
			return &p.Images[i]
		}
	}
	if len(p.Images) > 0 {
		return &p.Images[0]
	}
	return nil
}

// MarkDeleted records the deletion event
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

// ProductImage is a picture attached to a product
type ProductImage struct {
	shared.BaseEntity
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	StorageKey string    `gorm:"column:image;type:varchar(500);not null"`
	AltText    string    `gorm:"type:varchar(255)"`
	IsFeatured bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProductImage creates an image record for an uploaded object
func NewProductImage(productID uuid.UUID, storageKey, altText string, featured bool) (*ProductImage, error) {
	if storageKey == "" {
		return nil, shared.NewFieldError("image", "No file was submitted.")
	}
	return &ProductImage{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		StorageKey: storageKey,
		AltText:    altText,
		IsFeatured: featured,
	}, nil
}

// ProductVariation is a purchasable variant such as "Red / XL"
type ProductVariation struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_variation_product_name,priority:1"`
	Name          string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_variation_product_name,priority:2"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	SKU           string          `gorm:"column:sku;type:varchar(100);not null;uniqueIndex"`
	IsActive      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductVariation) TableName() string {
	return "product_variations"
}

// NewProductVariation creates a variation
func NewProductVariation(productID uuid.UUID, name, sku string, price decimal.Decimal, stock int) (*ProductVariation, error) {
	v := &ProductVariation{BaseEntity: shared.NewBaseEntity(), ProductID: productID, IsActive: true}
	if err := v.Update(name, sku, price, stock, true); err != nil {
		return nil, err
	}
	return v, nil
}

// Update replaces the variation fields
func (v *ProductVariation) Update(name, sku string, price decimal.Decimal, stock int, isActive bool) error {
	name = strings.TrimSpace(name)
	if err := validateName("name", name, 100); err != nil {
		return err
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewFieldError("sku", "This field may not be blank.")
	}
	if price.IsNegative() {
		return shared.NewFieldError("price", "Ensure this value is greater than or equal to 0.")
	}
	if stock < 0 {
		return shared.NewFieldError("stock_quantity", "Ensure this value is greater than or equal to 0.")
	}
	v.Name = name
	v.SKU = sku
	v.Price = price.Round(2)
	v.StockQuantity = stock
	v.IsActive = isActive
	v.Touch()
	return nil
}
