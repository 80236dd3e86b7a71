package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/catalog"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCategoryDepth stops subcategory expansion on corrupt parent cycles
const maxCategoryDepth = 8

// CategoryService handles category operations
type CategoryService struct {
	categories catalog.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns categories ordered by name, each with its active subcategories
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	query := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Active:   filter.IsActive,
	}
	categories, total, err := s.categories.FindAll(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	result := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		if err := s.loadSubcategories(ctx, &categories[i], 0); err != nil {
			return nil, 0, err
		}
		result = append(result, ToCategoryResponse(&categories[i]))
	}
	return result, total, nil
}

// Get returns one category with its subcategory tree
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadSubcategories(ctx, category, 0); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create creates a category with a unique slug
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*CategoryResponse, error) {
	if err := s.checkParent(ctx, input.ParentID, nil); err != nil {
		return nil, err
	}
	category, err := catalog.NewCategory(input.Name, input.Description, input.ParentID)
	if err != nil {
		return nil, err
	}
	category.IsActive = boolOr(input.IsActive, true)
	if category.Slug, err = uniqueSlug(ctx, category.Name, s.categories.SlugExists, nil); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update changes a category. The slug follows a renamed category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, input.ParentID, &id); err != nil {
		return nil, err
	}
	renamed := category.Name != input.Name
	if err := category.Update(input.Name, input.Description, boolOr(input.IsActive, category.IsActive)); err != nil {
		return nil, err
	}
	if err := category.SetParent(input.ParentID); err != nil {
		return nil, err
	}
	if renamed {
		if category.Slug, err = uniqueSlug(ctx, category.Name, s.categories.SlugExists, &category.ID); err != nil {
			return nil, err
		}
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	if err := s.loadSubcategories(ctx, category, 0); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category that no product references
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.categories.HasProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("check category products: %w", err)
	}
	if used {
		return shared.ErrConflict.WithMessage("Cannot delete a category that still has products.")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *CategoryService) checkParent(ctx context.Context, parentID, selfID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if selfID != nil && *parentID == *selfID {
		return shared.NewFieldError("parent", "A category cannot be its own parent.")
	}
	if _, err := s.categories.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewFieldError("parent", "Invalid parent category.")
		}
		return err
	}
	return nil
}

func (s *CategoryService) loadSubcategories(ctx context.Context, category *catalog.Category, depth int) error {
	if depth >= maxCategoryDepth {
		return nil
	}
	children, err := s.categories.FindChildren(ctx, category.ID)
	if err != nil {
		return fmt.Errorf("load subcategories: %w", err)
	}
	for i := range children {
		if err := s.loadSubcategories(ctx, &children[i], depth+1); err != nil {
			return err
		}
	}
	category.Subcategories = children
	return nil
}
