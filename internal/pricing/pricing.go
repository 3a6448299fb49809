// Package pricing derives monetary totals from cart state. It is pure: no
// I/O, no error conditions, empty input yields all-zero totals.
package pricing

import (
	"math"

	"github.com/voltkart/storefront/internal/domain"
)

// TaxRate is applied to subtotal plus customization surcharge, before
// discount and shipping.
const TaxRate = 0.18

// ComputeTotals recomputes the full breakdown. Tax is charged on
// subtotal+customization; percentage coupons are capped by MaxDiscount when
// present; fixed coupons apply verbatim. Total is floored at zero so a large
// fixed coupon can never produce a negative payable amount.
func ComputeTotals(items []domain.CartItem, coupon *domain.AppliedCoupon, shippingCost float64) domain.Totals {
	// Nothing to charge for: shipping and coupons apply to items, not to an
	// empty cart.
	if len(items) == 0 {
		return domain.Totals{}
	}

	t := domain.Totals{ShippingCost: round2(shippingCost)}

	for _, item := range items {
		t.ItemCount += item.Quantity
		t.Subtotal += item.Product.BasePrice * float64(item.Quantity)
		if item.Customization != nil {
			t.CustomizationCost += (item.Customization.TotalPrice - item.Product.BasePrice) * float64(item.Quantity)
		}
	}
	t.Subtotal = round2(t.Subtotal)
	t.CustomizationCost = round2(t.CustomizationCost)

	taxable := t.Subtotal + t.CustomizationCost
	t.TaxAmount = round2(taxable * TaxRate)

	if coupon != nil {
		switch coupon.DiscountType {
		case domain.DiscountPercentage:
			discount := taxable * coupon.DiscountValue / 100
			if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
				discount = coupon.MaxDiscount
			}
			t.DiscountAmount = round2(discount)
		case domain.DiscountFixed:
			t.DiscountAmount = round2(coupon.DiscountValue)
		}
	}

	total := taxable + t.TaxAmount + t.ShippingCost - t.DiscountAmount
	if total < 0 {
		total = 0
	}
	t.Total = round2(total)
	return t
}

// round2 rounds to whole paise.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
