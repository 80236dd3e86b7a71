package shipping

import (
	"context"
	"fmt"

	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressService manages a customer's delivery addresses.
// Every operation is scoped to the owning user.
type AddressService struct {
	addresses shipping.AddressRepository
	logger    *zap.Logger
}

// NewAddressService creates a new AddressService
func NewAddressService(addresses shipping.AddressRepository, logger *zap.Logger) *AddressService {
	return &AddressService{addresses: addresses, logger: logger}
}

// List returns the user's addresses
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	addresses, err := s.addresses.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	result := make([]AddressResponse, 0, len(addresses))
	for i := range addresses {
		result = append(result, ToAddressResponse(&addresses[i]))
	}
	return result, nil
}

// Get returns one of the user's addresses
func (s *AddressService) Get(ctx context.Context, userID, id uuid.UUID) (*AddressResponse, error) {
	a, err := s.addresses.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Create adds an address. A default address clears the user's other defaults.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressResponse, error) {
	a, err := shipping.NewAddress(userID, input.details())
	if err != nil {
		return nil, err
	}
	if err := s.addresses.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save address: %w", err)
	}
	s.logger.Debug("Address created", zap.String("address_id", a.ID.String()), zap.String("user_id", userID.String()))
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Update replaces an address's fields
func (s *AddressService) Update(ctx context.Context, userID, id uuid.UUID, input AddressInput) (*AddressResponse, error) {
	a, err := s.addresses.FindForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := a.Update(input.details()); err != nil {
		return nil, err
	}
	if err := s.addresses.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save address: %w", err)
	}
	resp := ToAddressResponse(a)
	return &resp, nil
}

// Delete removes one of the user's addresses
func (s *AddressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.addresses.Delete(ctx, userID, id)
}

// SetDefault marks an address as the user's default
func (s *AddressService) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	a, err := s.addresses.FindForUser(ctx, userID, id)
	if err != nil {
		return err
	}
	a.IsDefault = true
	if err := s.addresses.Save(ctx, a); err != nil {
		return fmt.Errorf("save address: %w", err)
	}
	return nil
}
