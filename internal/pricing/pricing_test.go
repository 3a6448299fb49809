package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voltkart/storefront/internal/domain"
)

func twoBatteries() []domain.CartItem {
	return []domain.CartItem{
		{
			ProductID:  "bat-1",
			Product:    domain.Product{ID: "bat-1", Name: "12V 100Ah Tubular", BasePrice: 5999},
			Quantity:   2,
			UnitPrice:  5999,
			TotalPrice: 11998,
		},
	}
}

func TestComputeTotals_NoCoupon(t *testing.T) {
	totals := ComputeTotals(twoBatteries(), nil, 0)

	assert.Equal(t, 2, totals.ItemCount)
	assert.InDelta(t, 11998, totals.Subtotal, 0.001)
	assert.InDelta(t, 0, totals.CustomizationCost, 0.001)
	assert.InDelta(t, 2159.64, totals.TaxAmount, 0.001)
	assert.InDelta(t, 0, totals.DiscountAmount, 0.001)
	assert.InDelta(t, 14157.64, totals.Total, 0.001)
}

func TestComputeTotals_FixedCoupon(t *testing.T) {
	coupon := &domain.AppliedCoupon{
		Code:          "FLAT500",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 500,
	}

	totals := ComputeTotals(twoBatteries(), coupon, 0)

	assert.InDelta(t, 500, totals.DiscountAmount, 0.001)
	assert.InDelta(t, 13657.64, totals.Total, 0.001)
}

func TestComputeTotals_PercentageCouponCapped(t *testing.T) {
	coupon := &domain.AppliedCoupon{
		Code:          "SAVE15",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 15,
		MaxDiscount:   1000,
	}

	totals := ComputeTotals(twoBatteries(), coupon, 0)

	// 15% of 11998 is 1799.70, capped at 1000
	assert.InDelta(t, 1000, totals.DiscountAmount, 0.001)
	assert.InDelta(t, 13157.64, totals.Total, 0.001)
}

func TestComputeTotals_PercentageCouponUncapped(t *testing.T) {
	coupon := &domain.AppliedCoupon{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
	}

	totals := ComputeTotals(twoBatteries(), coupon, 0)

	assert.InDelta(t, 1199.80, totals.DiscountAmount, 0.001)
}

func TestComputeTotals_CustomizationSurcharge(t *testing.T) {
	items := []domain.CartItem{
		{
			ProductID: "bat-2",
			Product:   domain.Product{ID: "bat-2", BasePrice: 1000},
			Quantity:  3,
			Customization: &domain.Customization{
				Options: []domain.CustomizationOption{
					{ComponentID: "cap-200ah", Type: "capacity", PriceModifier: 250},
				},
				TotalPrice: 1250,
			},
			UnitPrice:  1250,
			TotalPrice: 3750,
		},
	}

	totals := ComputeTotals(items, nil, 0)

	assert.InDelta(t, 3000, totals.Subtotal, 0.001)
	assert.InDelta(t, 750, totals.CustomizationCost, 0.001)
	// tax on subtotal + surcharge
	assert.InDelta(t, 675, totals.TaxAmount, 0.001)
	assert.InDelta(t, 4425, totals.Total, 0.001)
}

func TestComputeTotals_ShippingIncluded(t *testing.T) {
	totals := ComputeTotals(twoBatteries(), nil, 149)
	assert.InDelta(t, 149, totals.ShippingCost, 0.001)
	assert.InDelta(t, 14306.64, totals.Total, 0.001)
}

func TestComputeTotals_NeverNegative(t *testing.T) {
	coupon := &domain.AppliedCoupon{
		Code:          "MEGA",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: 1000000,
	}

	totals := ComputeTotals(twoBatteries(), coupon, 0)

	assert.GreaterOrEqual(t, totals.Total, 0.0)
	assert.InDelta(t, 0, totals.Total, 0.001)
	// the discount amount itself is reported uncapped
	assert.InDelta(t, 1000000, totals.DiscountAmount, 0.001)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, nil, 0)
	assert.Equal(t, domain.Totals{}, totals)
}

func TestComputeTotals_EmptyCartIgnoresShipping(t *testing.T) {
	totals := ComputeTotals(nil, nil, 149)
	assert.Equal(t, domain.Totals{}, totals)
}
