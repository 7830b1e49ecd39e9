package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promo is a discount code.  It applies to a purchase only when the
// purchase falls inside the validity window, is paid with the allowed
// method and reaches the minimum purchase amount.
type Promo struct {
	Code            string          // promos.code
	Description     string          // promos.description
	DiscountPercent decimal.Decimal // promos.discount_percent, 0..100
	MinimumPurchase decimal.Decimal // promos.minimum_purchase
	AllowedMethod   PaymentMethod   // promos.allowed_method
	ValidFrom       time.Time       // promos.valid_from
	ValidTo         time.Time       // promos.valid_to
}

var hundred = decimal.NewFromInt(100)

// AppliesTo reports whether every eligibility predicate holds.  The
// validity window is inclusive on both ends.
func (p Promo) AppliesTo(subtotal decimal.Decimal, method PaymentMethod, at time.Time) bool {
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(hundred) {
		return false
	}
	if at.Before(p.ValidFrom) || at.After(p.ValidTo) {
		return false
	}
	if method != p.AllowedMethod {
		return false
	}
	return subtotal.GreaterThanOrEqual(p.MinimumPurchase)
}
