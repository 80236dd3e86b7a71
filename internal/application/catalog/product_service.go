package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// productOrderings lists the accepted values of the ordering query parameter
var productOrderings = map[string]bool{
	"price": true, "-price": true,
	"created_at": true, "-created_at": true,
	"updated_at": true, "-updated_at": true,
}

const defaultProductOrdering = "-created_at"

// ProductService handles product, image and variation operations
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	brands     catalog.BrandRepository
	storage    appshared.ObjectStorage
	events     shared.EventPublisher
	logger     *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	brands catalog.BrandRepository,
	storage appshared.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		brands:     brands,
		storage:    storage,
		events:     events,
		logger:     logger,
	}
}

// List returns active products matching the query
func (s *ProductService) List(ctx context.Context, query ProductListQuery) (*ProductListResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "list")
	defer span.End()

	ordering := strings.TrimSpace(query.Ordering)
	if !productOrderings[ordering] {
		ordering = defaultProductOrdering
	}
	filter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
			OrderBy:  ordering,
			Search:   query.Search,
		},
		BrandID:    query.BrandID,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		IsFeatured: query.IsFeatured,
		IsOnSale:   query.IsOnSale,
		ActiveOnly: true,
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		if id, err := uuid.Parse(category); err == nil {
			filter.CategoryID = &id
		} else {
			filter.CategorySlug = category
		}
	}
	filter.Normalize()

	products, total, err := s.products.FindAll(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("list products: %w", err)
	}
	span.SetAttributes(attribute.Int64("product.total", total))

	items := make([]ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, ToProductResponse(&products[i], s.storage))
	}
	return &ProductListResult{Products: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Get returns a product. Inactive products are visible only when includeInactive is set.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(product, s.storage)
	return &resp, nil
}

// GetBySlug returns an active product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(product, s.storage)
	return &resp, nil
}

// Create creates a product
func (s *ProductService) Create(ctx context.Context, input ProductInput, createdBy *uuid.UUID) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create")
	defer span.End()

	if err := s.checkRelations(ctx, input); err != nil {
		return nil, err
	}
	if err := s.checkSKU(ctx, input.SKU, nil); err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(toDetails(input, true), createdBy)
	if err != nil {
		return nil, err
	}
	if product.Slug, err = uniqueSlug(ctx, product.Name, s.products.SlugExists, nil); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	appshared.PublishEvents(ctx, s.events, s.logger, product)

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	return s.reload(ctx, product.ID)
}

// Update replaces a product's writable fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, input); err != nil {
		return nil, err
	}
	if err := s.checkSKU(ctx, input.SKU, &id); err != nil {
		return nil, err
	}
	renamed := product.Name != strings.TrimSpace(input.Name)
	if err := product.Update(toDetails(input, product.IsActive)); err != nil {
		return nil, err
	}
	if renamed {
		if product.Slug, err = uniqueSlug(ctx, product.Name, s.products.SlugExists, &product.ID); err != nil {
			return nil, err
		}
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	appshared.PublishEvents(ctx, s.events, s.logger, product)
	return s.reload(ctx, product.ID)
}

// Delete removes a product with its images, variations and reviews
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.MarkDeleted()
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range product.Images {
		s.removeObject(ctx, img.StorageKey)
	}
	appshared.PublishEvents(ctx, s.events, s.logger, product)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// AddImage uploads an image and attaches it to the product
func (s *ProductService) AddImage(ctx context.Context, productID uuid.UUID, upload appshared.Upload, altText string, featured bool) (*ImageResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if !appshared.AllowedImageTypes[upload.ContentType] {
		return nil, shared.NewFieldError("image", "Upload a valid image.")
	}
	key := appshared.ObjectKey("products", upload.Filename)
	if err := s.storage.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("upload product image: %w", err)
	}
	image, err := catalog.NewProductImage(productID, key, altText, featured)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	if err := s.products.AddImage(ctx, image); err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("save product image: %w", err)
	}
	resp := toImageResponse(image, s.storage)
	return &resp, nil
}

// DeleteImage detaches an image and removes the stored object
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	image, err := s.products.FindImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if err := s.products.DeleteImage(ctx, productID, imageID); err != nil {
		return err
	}
	s.removeObject(ctx, image.StorageKey)
	return nil
}

// AddVariation creates a variation of the product
func (s *ProductService) AddVariation(ctx context.Context, productID uuid.UUID, input VariationInput) (*VariationResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	variation, err := catalog.NewProductVariation(productID, input.Name, input.SKU, input.Price, input.StockQuantity)
	if err != nil {
		return nil, err
	}
	variation.IsActive = boolOr(input.IsActive, true)
	if err := s.products.SaveVariation(ctx, variation); err != nil {
		return nil, err
	}
	resp := toVariationResponse(variation)
	return &resp, nil
}

// UpdateVariation replaces a variation's fields
func (s *ProductService) UpdateVariation(ctx context.Context, productID, variationID uuid.UUID, input VariationInput) (*VariationResponse, error) {
	variation, err := s.products.FindVariation(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	if err := variation.Update(input.Name, input.SKU, input.Price, input.StockQuantity, boolOr(input.IsActive, variation.IsActive)); err != nil {
		return nil, err
	}
	if err := s.products.SaveVariation(ctx, variation); err != nil {
		return nil, err
	}
	resp := toVariationResponse(variation)
	return &resp, nil
}

// DeleteVariation removes a variation
func (s *ProductService) DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error {
	return s.products.DeleteVariation(ctx, productID, variationID)
}

func (s *ProductService) reload(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	resp := ToProductResponse(product, s.storage)
	return &resp, nil
}

// checkRelations requires an active category and, when set, an existing brand
func (s *ProductService) checkRelations(ctx context.Context, input ProductInput) error {
	if input.CategoryID != uuid.Nil {
		category, err := s.categories.FindByID(ctx, input.CategoryID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewFieldError("category_id", "Invalid category.")
			}
			return err
		}
		if !category.IsActive {
			return shared.NewFieldError("category_id", "Category is not active.")
		}
	}
	if input.BrandID != nil {
		if _, err := s.brands.FindByID(ctx, *input.BrandID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewFieldError("brand_id", "Invalid brand.")
			}
			return err
		}
	}
	return nil
}

func (s *ProductService) checkSKU(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil
	}
	taken, err := s.products.SKUExists(ctx, sku, excludeID)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return shared.ErrAlreadyExists.WithMessage("product with this sku already exists.").WithField("sku")
	}
	return nil
}

func (s *ProductService) removeObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

func toDetails(input ProductInput, activeDefault bool) catalog.ProductDetails {
	return catalog.ProductDetails{
		Name:           input.Name,
		Description:    input.Description,
		CategoryID:     input.CategoryID,
		BrandID:        input.BrandID,
		Price:          input.Price,
		DiscountPrice:  input.DiscountPrice,
		SKU:            input.SKU,
		StockQuantity:  input.StockQuantity,
		Availability:   catalog.Availability(input.Availability),
		IsActive:       boolOr(input.IsActive, activeDefault),
		IsFeatured:     input.IsFeatured,
		SEOTitle:       input.SEOTitle,
		SEODescription: input.SEODescription,
	}
}
