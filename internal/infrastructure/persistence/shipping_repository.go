package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/adfinitum/backend/internal/domain/shipping"
	"github.com/adfinitum/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Address, error) {
	var model models.ShippingAddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUser finds an address owned by the user
func (r *GormAddressRepository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*shipping.Address, error) {
	var model models.ShippingAddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's addresses, default first
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]shipping.Address, error) {
	var rows []models.ShippingAddressModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	addresses := make([]shipping.Address, len(rows))
	for i := range rows {
		addresses[i] = *rows[i].ToDomain()
	}
	return addresses, nil
}

// Save upserts the address, clearing the user's other defaults when needed
func (r *GormAddressRepository) Save(ctx context.Context, address *shipping.Address) error {
	model := models.ShippingAddressModelFromDomain(address)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if model.IsDefault {
			if err := tx.Model(&models.ShippingAddressModel{}).
				Where("user_id = ? AND id <> ? AND is_default = ?", model.UserID, model.ID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(model).Error
	})
}

// Delete deletes a user's address
func (r *GormAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ShippingAddressModel{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormShippingMethodRepository implements MethodRepository using GORM
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewGormShippingMethodRepository creates a new GormShippingMethodRepository
func NewGormShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// FindByID finds a shipping method by ID
func (r *GormShippingMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Method, error) {
	var model models.ShippingMethodModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive lists active methods, cheapest first
func (r *GormShippingMethodRepository) FindActive(ctx context.Context) ([]shipping.Method, error) {
	var rows []models.ShippingMethodModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("base_cost ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	methods := make([]shipping.Method, len(rows))
	for i := range rows {
		methods[i] = *rows[i].ToDomain()
	}
	return methods, nil
}

// ExistsByName checks whether another method has the name, ignoring case
func (r *GormShippingMethodRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ShippingMethodModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a method
func (r *GormShippingMethodRepository) Save(ctx context.Context, method *shipping.Method) error {
	err := r.db.WithContext(ctx).Save(models.ShippingMethodModelFromDomain(method)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shipping.ErrMethodNameConflict
	}
	return err
}

// Delete deletes a method
func (r *GormShippingMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ShippingMethodModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func (r *GormShipmentRepository) loaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Address").
		Preload("Method").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		})
}

// FindByID loads a shipment with address, method and history
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.loaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder loads the shipment of an order
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.loaded(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists shipments newest first
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shipping.ShipmentFilter) ([]shipping.Shipment, int64, error) {
	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}
	page.Normalize()

	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{})
	if filter.OwnerID != nil {
		query = query.Where("order_id IN (?)",
			r.db.Model(&models.OrderModel{}).Select("id").Where("user_id = ?", *filter.OwnerID))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShipmentModel
	if err := query.Preload("Address").Preload("Method").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	shipments := make([]shipping.Shipment, len(rows))
	for i := range rows {
		shipments[i] = *rows[i].ToDomain()
	}
	return shipments, total, nil
}

// Save upserts the shipment and appends history rows not yet stored
func (r *GormShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Address", "Method", "History").Save(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shipping.ErrShipmentExists
			}
			return err
		}
		if len(s.History) == 0 {
			return nil
		}
		history := make([]models.ShipmentHistoryModel, 0, len(s.History))
		for _, h := range s.History {
			history = append(history, models.ShipmentHistoryModelFromDomain(h))
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&history).Error
	})
}

// FindHistory returns the status history of a shipment, newest first
func (r *GormShipmentRepository) FindHistory(ctx context.Context, shipmentID uuid.UUID) ([]shipping.HistoryEntry, error) {
	var rows []models.ShipmentHistoryModel
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("changed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]shipping.HistoryEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

var (
	_ shipping.AddressRepository  = (*GormAddressRepository)(nil)
	_ shipping.MethodRepository   = (*GormShippingMethodRepository)(nil)
	_ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)
)
