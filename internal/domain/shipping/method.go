package shipping

import (
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultEstimatedDays applies when a method omits its delivery estimate
const DefaultEstimatedDays = 3

// Method is a delivery option such as pickup, standard or express
type Method struct {
	shared.BaseEntity
	Name          string
	Description   string
	BaseCost      decimal.Decimal
	CostPerKm     decimal.Decimal
	EstimatedDays int
	IsActive      bool
}

// NewMethod creates an active shipping method
func NewMethod(name, description string, baseCost, costPerKm decimal.Decimal, estimatedDays int) (*Method, error) {
	m := &Method{BaseEntity: shared.NewBaseEntity()}
	if err := m.Update(name, description, baseCost, costPerKm, estimatedDays, true); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the writable fields
func (m *Method) Update(name, description string, baseCost, costPerKm decimal.Decimal, estimatedDays int, isActive bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewFieldError("name", "This field may not be blank.")
	}
	if baseCost.IsNegative() {
		return shared.NewFieldError("base_cost", "Ensure this value is greater than or equal to 0.")
	}
	if costPerKm.IsNegative() {
		return shared.NewFieldError("cost_per_km", "Ensure this value is greater than or equal to 0.")
	}
	if estimatedDays < 0 {
		return shared.NewFieldError("estimated_days", "Ensure this value is greater than or equal to 0.")
	}
	if estimatedDays == 0 {
		estimatedDays = DefaultEstimatedDays
	}
	m.Name = name
	m.Description = description
	m.BaseCost = baseCost.Round(2)
	m.CostPerKm = costPerKm.Round(2)
	m.EstimatedDays = estimatedDays
	m.IsActive = isActive
	m.Touch()
	return nil
}

// CostFor returns the delivery cost for a distance in kilometres
func (m *Method) CostFor(distanceKm decimal.Decimal) decimal.Decimal {
	if distanceKm.IsNegative() {
		distanceKm = decimal.Zero
	}
	return m.BaseCost.Add(m.CostPerKm.Mul(distanceKm)).Round(2)
}
