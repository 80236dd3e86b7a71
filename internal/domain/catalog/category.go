package catalog

import (
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups products. Categories nest through ParentID.
type Category struct {
	shared.BaseAggregateRoot
	Name          string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Slug          string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index"`
	Description   string     `gorm:"type:text"`
	IsActive      bool       `gorm:"not null"`
	Subcategories []Category `gorm:"-"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates an active category; the slug derives from the name
func NewCategory(name, description string, parentID *uuid.UUID) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateName("name", name, 255); err != nil {
		return nil, err
	}
	c := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              Slugify(name),
		Description:       description,
		IsActive:          true,
	}
	if err := c.SetParent(parentID); err != nil {
		return nil, err
	}
	return c, nil
}

// Update changes the category's descriptive fields
func (c *Category) Update(name, description string, isActive bool) error {
	name = strings.TrimSpace(name)
	if err := validateName("name", name, 255); err != nil {
		return err
	}
	c.Name = name
	c.Description = description
	c.IsActive = isActive
	c.Touch()
	return nil
}

// SetParent moves the category under another category
func (c *Category) SetParent(parentID *uuid.UUID) error {
	if parentID != nil && *parentID == c.ID {
		return shared.NewFieldError("parent", "A category cannot be its own parent.")
	}
	c.ParentID = parentID
	return nil
}

func validateName(field, name string, max int) error {
	if name == "" {
		return shared.NewFieldError(field, "This field may not be blank.")
	}
	if len(name) > max {
		return shared.NewFieldError(field, "Ensure this field is not too long.")
	}
	return nil
}
