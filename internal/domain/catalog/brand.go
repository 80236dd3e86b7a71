package catalog

import (
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
)

// Brand is a product manufacturer or label
type Brand struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Brand) TableName() string {
	return "brands"
}

// NewBrand creates an active brand
func NewBrand(name, description string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if err := validateName("name", name, 100); err != nil {
		return nil, err
	}
	return &Brand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              Slugify(name),
		Description:       description,
		IsActive:          true,
	}, nil
}

// Update changes the brand's fields
func (b *Brand) Update(name, description string, isActive bool) error {
	name = strings.TrimSpace(name)
	if err := validateName("name", name, 100); err != nil {
		return err
	}
	b.Name = name
	b.Description = description
	b.IsActive = isActive
	b.Touch()
	return nil
}
