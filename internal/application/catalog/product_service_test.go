package catalog

import (
	"bytes"
	"context"
	"errors"
	"testing"

	appshared "github.com/adfinitum/backend/internal/application/shared"
	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type productFixture struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	brands     *MockBrandRepository
	events     *MockEventPublisher
	storage    *storage.StubObjectStorage
	service    *ProductService
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		brands:     new(MockBrandRepository),
		events:     new(MockEventPublisher),
		storage:    storage.NewStubObjectStorage("http://cdn.test"),
	}
	f.service = NewProductService(f.products, f.categories, f.brands, f.storage, f.events, zap.NewNop())
	return f
}

func activeCategory() *catalog.Category {
	c, _ := catalog.NewCategory("Phones", "", nil)
	return c
}

func newTestProduct(t *testing.T, categoryID uuid.UUID) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Galaxy S24",
		Description: "Flagship phone",
		CategoryID:  categoryID,
		Price:       decimal.NewFromInt(100000),
		IsActive:    true,
	}, nil)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func validProductInput(categoryID uuid.UUID) ProductInput {
	return ProductInput{
		Name:        "Galaxy S24",
		Description: "Flagship phone",
		CategoryID:  categoryID,
		Price:       decimal.NewFromInt(100000),
		SKU:         "GS24",
	}
}

func TestProductService_List_DefaultsOrderingAndFiltersActive(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	category := activeCategory()
	p := newTestProduct(t, category.ID)

	f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
		return filter.ActiveOnly && filter.OrderBy == "-created_at" && filter.Page == 1 && filter.PageSize == 20
	})).Return([]catalog.Product{*p}, int64(1), nil)

	result, err := f.service.List(ctx, ProductListQuery{Ordering: "name; DROP TABLE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "galaxy-s24", result.Products[0].Slug)
	f.products.AssertExpectations(t)
}

func TestProductService_List_CategoryByIDOrSlug(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("uuid", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
			return filter.CategoryID != nil && *filter.CategoryID == categoryID && filter.CategorySlug == ""
		})).Return([]catalog.Product{}, int64(0), nil)

		_, err := f.service.List(ctx, ProductListQuery{Category: categoryID.String(), Ordering: "-price"})
		require.NoError(t, err)
		f.products.AssertExpectations(t)
	})

	t.Run("slug", func(t *testing.T) {
		f := newProductFixture()
		f.products.On("FindAll", mock.Anything, mock.MatchedBy(func(filter catalog.ProductFilter) bool {
			return filter.CategoryID == nil && filter.CategorySlug == "phones" && filter.OrderBy == "price"
		})).Return([]catalog.Product{}, int64(0), nil)

		_, err := f.service.List(ctx, ProductListQuery{Category: "phones", Ordering: "price"})
		require.NoError(t, err)
		f.products.AssertExpectations(t)
	})
}

func TestProductService_Get_HidesInactive(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := newTestProduct(t, uuid.New())
	p.IsActive = false
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.service.Get(ctx, p.ID, false)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	resp, err := f.service.Get(ctx, p.ID, true)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
}

func TestProductService_Create(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	category := activeCategory()
	userID := uuid.New()

	f.categories.On("FindByID", mock.Anything, category.ID).Return(category, nil)
	f.products.On("SKUExists", mock.Anything, "GS24", (*uuid.UUID)(nil)).Return(false, nil)
	f.products.On("SlugExists", mock.Anything, "galaxy-s24", (*uuid.UUID)(nil)).Return(true, nil)
	f.products.On("SlugExists", mock.Anything, "galaxy-s24-2", (*uuid.UUID)(nil)).Return(false, nil)

	var saved *catalog.Product
	f.products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*catalog.Product) }).
		Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == catalog.EventTypeProductCreated
	})).Return(nil)
	f.products.On("FindByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(func(_ context.Context, _ uuid.UUID) *catalog.Product { return saved }, nil)

	resp, err := f.service.Create(ctx, validProductInput(category.ID), &userID)
	require.NoError(t, err)
	assert.Equal(t, "galaxy-s24-2", resp.Slug)
	assert.True(t, resp.IsActive)
	require.NotNil(t, saved.CreatedBy)
	assert.Equal(t, userID, *saved.CreatedBy)
	f.products.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestProductService_Create_RejectsInactiveCategory(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	category := activeCategory()
	category.IsActive = false
	f.categories.On("FindByID", mock.Anything, category.ID).Return(category, nil)

	_, err := f.service.Create(ctx, validProductInput(category.ID), nil)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	assert.Equal(t, "category_id", domainErr.Field)
	f.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_Create_UnknownCategory(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	id := uuid.New()
	f.categories.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.Create(ctx, validProductInput(id), nil)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "category_id", domainErr.Field)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	category := activeCategory()
	f.categories.On("FindByID", mock.Anything, category.ID).Return(category, nil)
	f.products.On("SKUExists", mock.Anything, "GS24", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := f.service.Create(ctx, validProductInput(category.ID), nil)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestProductService_Update_KeepsSlugWhenNameUnchanged(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	category := activeCategory()
	p := newTestProduct(t, category.ID)

	input := validProductInput(category.ID)
	discount := decimal.NewFromInt(90000)
	input.DiscountPrice = &discount

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.categories.On("FindByID", mock.Anything, category.ID).Return(category, nil)
	f.products.On("SKUExists", mock.Anything, "GS24", &p.ID).Return(false, nil)
	f.products.On("Save", mock.Anything, p).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Update(ctx, p.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "galaxy-s24", resp.Slug)
	assert.True(t, resp.IsOnSale)
	f.products.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_AddImage(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := newTestProduct(t, uuid.New())
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("AddImage", mock.Anything, mock.AnythingOfType("*catalog.ProductImage")).Return(nil)

	resp, err := f.service.AddImage(ctx, p.ID, appshared.Upload{
		Filename:    "front.PNG",
		ContentType: "image/png",
		Size:        3,
		Body:        bytes.NewReader([]byte("png")),
	}, "Front view", true)
	require.NoError(t, err)
	assert.Contains(t, resp.Image, "http://cdn.test/products/")
	assert.Contains(t, resp.Image, ".png")
	assert.True(t, resp.IsFeatured)
	assert.Equal(t, 1, f.storage.Len())
}

func TestProductService_AddImage_RejectsNonImage(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := newTestProduct(t, uuid.New())
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.service.AddImage(ctx, p.ID, appshared.Upload{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Body:        bytes.NewReader(nil),
	}, "", false)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "image", domainErr.Field)
	assert.Equal(t, 0, f.storage.Len())
}

func TestProductService_AddImage_RemovesObjectWhenSaveFails(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := newTestProduct(t, uuid.New())
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("AddImage", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := f.service.AddImage(ctx, p.ID, appshared.Upload{
		Filename:    "a.jpg",
		ContentType: "image/jpeg",
		Size:        1,
		Body:        bytes.NewReader([]byte("x")),
	}, "", false)
	require.Error(t, err)
	assert.Equal(t, 0, f.storage.Len())
}

func TestProductService_Delete_RemovesImages(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := newTestProduct(t, uuid.New())
	require.NoError(t, f.storage.Upload(ctx, "products/a.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg"))
	p.Images = []catalog.ProductImage{{StorageKey: "products/a.jpg"}}

	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("Delete", mock.Anything, p.ID).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == catalog.EventTypeProductDeleted
	})).Return(nil)

	require.NoError(t, f.service.Delete(ctx, p.ID))
	assert.Equal(t, 0, f.storage.Len())
	f.events.AssertExpectations(t)
}

func TestProductService_Variations(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	p := newTestProduct(t, uuid.New())
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("SaveVariation", mock.Anything, mock.AnythingOfType("*catalog.ProductVariation")).Return(nil)

	created, err := f.service.AddVariation(ctx, p.ID, VariationInput{
		Name: "256GB", SKU: "GS24-256", Price: decimal.NewFromInt(110000), StockQuantity: 4,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	variation, _ := catalog.NewProductVariation(p.ID, "256GB", "GS24-256", decimal.NewFromInt(110000), 4)
	f.products.On("FindVariation", mock.Anything, p.ID, variation.ID).Return(variation, nil)
	inactive := false
	updated, err := f.service.UpdateVariation(ctx, p.ID, variation.ID, VariationInput{
		Name: "256GB", SKU: "GS24-256", Price: decimal.NewFromInt(105000), StockQuantity: 2, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, decimal.NewFromInt(105000).Equal(updated.Price))

	_, err = f.service.AddVariation(ctx, p.ID, VariationInput{Name: "", SKU: "X"})
	assert.Error(t, err)
}
