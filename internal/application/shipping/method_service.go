package shipping

import (
	"context"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MethodService manages delivery options
type MethodService struct {
	methods shipping.MethodRepository
	logger  *zap.Logger
}

// NewMethodService creates a new MethodService
func NewMethodService(methods shipping.MethodRepository, logger *zap.Logger) *MethodService {
	return &MethodService{methods: methods, logger: logger}
}

// ListActive returns the active methods, cheapest first
func (s *MethodService) ListActive(ctx context.Context) ([]MethodResponse, error) {
	methods, err := s.methods.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shipping methods: %w", err)
	}
	result := make([]MethodResponse, 0, len(methods))
	for i := range methods {
		result = append(result, ToMethodResponse(&methods[i]))
	}
	return result, nil
}

// Get returns a method
func (s *MethodService) Get(ctx context.Context, id uuid.UUID) (*MethodResponse, error) {
	m, err := s.methods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMethodResponse(m)
	return &resp, nil
}

// Create adds a method. Names are unique.
func (s *MethodService) Create(ctx context.Context, input MethodInput) (*MethodResponse, error) {
	m, err := shipping.NewMethod(input.Name, input.Description, input.BaseCost, input.CostPerKm, input.EstimatedDays)
	if err != nil {
		return nil, err
	}
	if input.IsActive != nil {
		m.IsActive = *input.IsActive
	}
	if err := s.checkName(ctx, m.Name, nil); err != nil {
		return nil, err
	}
	if err := s.methods.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("save shipping method: %w", err)
	}
	s.logger.Info("Shipping method created", zap.String("method_id", m.ID.String()), zap.String("name", m.Name))
	resp := ToMethodResponse(m)
	return &resp, nil
}

// Update replaces a method's fields
func (s *MethodService) Update(ctx context.Context, id uuid.UUID, input MethodInput) (*MethodResponse, error) {
	m, err := s.methods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active := m.IsActive
	if input.IsActive != nil {
		active = *input.IsActive
	}
	if err := m.Update(input.Name, input.Description, input.BaseCost, input.CostPerKm, input.EstimatedDays, active); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, m.Name, &m.ID); err != nil {
		return nil, err
	}
	if err := s.methods.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("save shipping method: %w", err)
	}
	resp := ToMethodResponse(m)
	return &resp, nil
}

// Delete removes a method
func (s *MethodService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.methods.FindByID(ctx, id); err != nil {
		return err
	}
	return s.methods.Delete(ctx, id)
}

func (s *MethodService) checkName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	taken, err := s.methods.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check shipping method name: %w", err)
	}
	if taken {
		return shipping.ErrMethodNameConflict.WithField("name")
	}
	return nil
}
