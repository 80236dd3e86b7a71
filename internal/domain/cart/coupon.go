package cart

import (
	"strings"
	"time"

	"github.com/adfinitum/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cart errors
var (
	ErrCouponNotFound = shared.NewDomainError("INVALID_COUPON", "Invalid coupon code")
	ErrCouponExpired  = shared.NewDomainError("COUPON_EXPIRED", "Coupon is expired or inactive")
)

var hundred = decimal.NewFromInt(100)

// Coupon grants a percentage discount within a validity window
type Coupon struct {
	shared.BaseAggregateRoot
	Code            string
	DiscountPercent decimal.Decimal
	Active          bool
	ValidFrom       time.Time
	ValidTo         time.Time
}

// NewCoupon validates and creates a coupon
func NewCoupon(code string, percent decimal.Decimal, validFrom, validTo time.Time, active bool) (*Coupon, error) {
	c := &Coupon{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.Update(code, percent, validFrom, validTo, active); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the coupon fields
func (c *Coupon) Update(code string, percent decimal.Decimal, validFrom, validTo time.Time, active bool) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewFieldError("code", "This field may not be blank.")
	}
	if len(code) > 50 {
		return shared.NewFieldError("code", "Ensure this field has no more than 50 characters.")
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return shared.NewFieldError("discount_percent", "Ensure this value is between 0 and 100.")
	}
	if validTo.Before(validFrom) {
		return shared.NewFieldError("valid_to", "End of validity must not precede its start.")
	}
	c.Code = code
	c.DiscountPercent = percent.Round(2)
	c.ValidFrom = validFrom
	c.ValidTo = validTo
	c.Active = active
	c.Touch()
	return nil
}

// IsValid reports whether the coupon can be used at the given time
func (c *Coupon) IsValid(now time.Time) bool {
	return c.Active && !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// DiscountFor returns the discount on an amount, rounded to cents
func (c *Coupon) DiscountFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.DiscountPercent).Div(hundred).Round(2)
}
