package persistence

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID with its relations loaded
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindBySlug finds a product by slug with its relations loaded
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *GormProductRepository) findOne(ctx context.Context, query string, arg any) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Where(query, arg).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	products := []catalog.Product{product}
	if err := r.hydrate(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// FindByIDs finds products by IDs. Missing IDs are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	field, dir := ParseOrdering(filter.OrderBy)
	if strings.TrimSpace(filter.OrderBy) == "" {
		field, dir = "created_at", "DESC"
	}
	field = ValidateSortField(field, ProductSortFields, "created_at")

	var products []catalog.Product
	if err := query.Order("products." + field + " " + dir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	if err := r.hydrate(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	} else if filter.CategorySlug != "" {
		query = query.Where("products.category_id IN (?)",
			r.db.Model(&catalog.Category{}).Select("id").Where("slug = ?", filter.CategorySlug))
	}
	if filter.BrandID != nil {
		query = query.Where("products.brand_id = ?", *filter.BrandID)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.IsFeatured != nil {
		query = query.Where("products.is_featured = ?", *filter.IsFeatured)
	}
	if filter.IsOnSale != nil {
		query = query.Where("products.is_on_sale = ?", *filter.IsOnSale)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.sku) LIKE ?",
			like, like, like)
	}
	return query
}

type ratingRow struct {
	ProductID uuid.UUID
	Average   float64
	Total     int64
}

// hydrate loads images, variations, category, brand and rating summary in batches
func (r *GormProductRepository) hydrate(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)

	ids := make([]uuid.UUID, 0, len(products))
	categoryIDs := make([]uuid.UUID, 0, len(products))
	brandIDs := make([]uuid.UUID, 0)
	for _, p := range products {
		ids = append(ids, p.ID)
		categoryIDs = append(categoryIDs, p.CategoryID)
		if p.BrandID != nil {
			brandIDs = append(brandIDs, *p.BrandID)
		}
	}

	var images []catalog.ProductImage
	if err := db.Where("product_id IN ?", ids).
		Order("is_featured DESC, created_at ASC").
		Find(&images).Error; err != nil {
		return err
	}
	var variations []catalog.ProductVariation
	if err := db.Where("product_id IN ?", ids).
		Order("name ASC").
		Find(&variations).Error; err != nil {
		return err
	}
	var categories []catalog.Category
	if err := db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return err
	}
	var brands []catalog.Brand
	if len(brandIDs) > 0 {
		if err := db.Where("id IN ?", brandIDs).Find(&brands).Error; err != nil {
			return err
		}
	}
	var ratings []ratingRow
	if err := db.Model(&catalog.ProductReview{}).
		Select("product_id, AVG(rating) AS average, COUNT(*) AS total").
		Where("product_id IN ?", ids).
		Group("product_id").
		Scan(&ratings).Error; err != nil {
		return err
	}

	imagesBy := make(map[uuid.UUID][]catalog.ProductImage)
	for _, img := range images {
		imagesBy[img.ProductID] = append(imagesBy[img.ProductID], img)
	}
	variationsBy := make(map[uuid.UUID][]catalog.ProductVariation)
	for _, v := range variations {
		variationsBy[v.ProductID] = append(variationsBy[v.ProductID], v)
	}
	categoryBy := make(map[uuid.UUID]*catalog.Category, len(categories))
	for i := range categories {
		categoryBy[categories[i].ID] = &categories[i]
	}
	brandBy := make(map[uuid.UUID]*catalog.Brand, len(brands))
	for i := range brands {
		brandBy[brands[i].ID] = &brands[i]
	}
	ratingBy := make(map[uuid.UUID]ratingRow, len(ratings))
	for _, row := range ratings {
		ratingBy[row.ProductID] = row
	}

	for i := range products {
		p := &products[i]
		p.Images = imagesBy[p.ID]
		if p.Images == nil {
			p.Images = []catalog.ProductImage{}
		}
		p.Variations = variationsBy[p.ID]
		if p.Variations == nil {
			p.Variations = []catalog.ProductVariation{}
		}
		p.Category = categoryBy[p.CategoryID]
		if p.BrandID != nil {
			p.Brand = brandBy[*p.BrandID]
		}
		if row, ok := ratingBy[p.ID]; ok {
			p.AverageRating = math.Round(row.Average*10) / 10
			p.ReviewCount = row.Total
		}
	}
	return nil
}

// SlugExists checks whether another product uses the slug
func (r *GormProductRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return slugExists(ctx, r.db, &catalog.Product{}, slug, excludeID)
}

// SKUExists checks whether another product uses the SKU
func (r *GormProductRepository) SKUExists(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product row. Relations are stored through their own methods.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return translateUnique(r.db.WithContext(ctx).Save(product).Error,
		"Product with this slug or SKU already exists.")
}

// Delete deletes a product together with its images, variations and reviews
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&catalog.ProductImage{}, &catalog.ProductVariation{}, &catalog.ProductReview{}} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&catalog.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count returns the total number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&count).Error
	return count, err
}

// AddImage stores an image. A featured image unsets the flag on its siblings.
func (r *GormProductRepository) AddImage(ctx context.Context, image *catalog.ProductImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if image.IsFeatured {
			if err := tx.Model(&catalog.ProductImage{}).
				Where("product_id = ? AND is_featured = ?", image.ProductID, true).
				Update("is_featured", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(image).Error
	})
}

// FindImage finds an image belonging to a product
func (r *GormProductRepository) FindImage(ctx context.Context, productID, imageID uuid.UUID) (*catalog.ProductImage, error) {
	var image catalog.ProductImage
	if err := r.db.WithContext(ctx).
		First(&image, "id = ? AND product_id = ?", imageID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes an image from a product
func (r *GormProductRepository) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductImage{}, "id = ? AND product_id = ?", imageID, productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SaveVariation creates or updates a variation
func (r *GormProductRepository) SaveVariation(ctx context.Context, variation *catalog.ProductVariation) error {
	return translateUnique(r.db.WithContext(ctx).Save(variation).Error,
		"Variation with this name or SKU already exists.")
}

// FindVariation finds a variation belonging to a product
func (r *GormProductRepository) FindVariation(ctx context.Context, productID, variationID uuid.UUID) (*catalog.ProductVariation, error) {
	var variation catalog.ProductVariation
	if err := r.db.WithContext(ctx).
		First(&variation, "id = ? AND product_id = ?", variationID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variation, nil
}

// DeleteVariation removes a variation from a product
func (r *GormProductRepository) DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductVariation{}, "id = ? AND product_id = ?", variationID, productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
