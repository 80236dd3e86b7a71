package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/adfinitum/backend/internal/domain/cart"
	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CouponService handles admin coupon management
type CouponService struct {
	coupons cart.CouponRepository
	logger  *zap.Logger
}

// NewCouponService creates a new CouponService
func NewCouponService(coupons cart.CouponRepository, logger *zap.Logger) *CouponService {
	return &CouponService{coupons: coupons, logger: logger}
}

// List returns coupons, newest first
func (s *CouponService) List(ctx context.Context, search string, page, pageSize int) ([]CouponResponse, int64, error) {
	filter := shared.Filter{Page: page, PageSize: pageSize, Search: strings.TrimSpace(search), OrderBy: "created_at", OrderDir: "desc"}
	coupons, total, err := s.coupons.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	result := make([]CouponResponse, 0, len(coupons))
	for i := range coupons {
		result = append(result, ToCouponResponse(&coupons[i]))
	}
	return result, total, nil
}

// Get returns one coupon
func (s *CouponService) Get(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	coupon, err := s.coupons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Create creates a coupon; codes are unique
func (s *CouponService) Create(ctx context.Context, input CouponInput) (*CouponResponse, error) {
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	coupon, err := cart.NewCoupon(input.Code, input.DiscountPercent, input.ValidFrom, input.ValidTo, active)
	if err != nil {
		return nil, err
	}
	if err := s.coupons.Save(ctx, coupon); err != nil {
		return nil, err
	}
	s.logger.Info("Coupon created", zap.String("code", coupon.Code))
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Update replaces a coupon's fields
func (s *CouponService) Update(ctx context.Context, id uuid.UUID, input CouponInput) (*CouponResponse, error) {
	coupon, err := s.coupons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active := coupon.Active
	if input.Active != nil {
		active = *input.Active
	}
	if err := coupon.Update(input.Code, input.DiscountPercent, input.ValidFrom, input.ValidTo, active); err != nil {
		return nil, err
	}
	if err := s.coupons.Save(ctx, coupon); err != nil {
		return nil, err
	}
	resp := ToCouponResponse(coupon)
	return &resp, nil
}

// Delete removes a coupon
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.coupons.Delete(ctx, id)
}
