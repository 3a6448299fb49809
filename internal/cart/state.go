package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/pricing"
)

// NewItem is an add request before the store assigns id and timestamp.
type NewItem struct {
	ProductID     string
	Product       domain.Product
	Quantity      int
	Customization *domain.Customization
}

func unitPrice(product domain.Product, customization *domain.Customization) float64 {
	if customization != nil && customization.TotalPrice > 0 {
		return customization.TotalPrice
	}
	return product.BasePrice
}

// Recompute refreshes the derived totals from items, coupon and delivery
// selection.
func Recompute(c *domain.Cart) {
	c.Totals = pricing.ComputeTotals(c.Items, c.Coupon, c.ShippingCost())
}

// AddItem merges into an existing line when product id and customization key
// match, preserving that line's unit price; otherwise it appends a new line
// with a fresh id.
func AddItem(c *domain.Cart, n NewItem) {
	key := n.Customization.Key()
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == n.ProductID && item.Customization.Key() == key {
			item.Quantity += n.Quantity
			item.TotalPrice = float64(item.Quantity) * item.UnitPrice
			Recompute(c)
			return
		}
	}

	price := unitPrice(n.Product, n.Customization)
	c.Items = append(c.Items, domain.CartItem{
		ID:            uuid.New().String(),
		ProductID:     n.ProductID,
		Product:       n.Product,
		Quantity:      n.Quantity,
		Customization: n.Customization,
		UnitPrice:     price,
		TotalPrice:    price * float64(n.Quantity),
		AddedAt:       time.Now(),
	})
	Recompute(c)
}

// UpdateItemQuantity sets a line's quantity. Zero or negative delegates to
// removal; unknown ids are a silent no-op.
func UpdateItemQuantity(c *domain.Cart, itemID string, quantity int) {
	if quantity <= 0 {
		RemoveItem(c, itemID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.Items[i].TotalPrice = float64(quantity) * c.Items[i].UnitPrice
			Recompute(c)
			return
		}
	}
}

func RemoveItem(c *domain.Cart, itemID string) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			Recompute(c)
			return
		}
	}
}

// ClearCart empties items, coupon, validation state and the delivery
// selection. Saved-for-later entries and the delivery pincode survive.
func ClearCart(c *domain.Cart) {
	c.Items = nil
	c.Coupon = nil
	c.Delivery = nil
	ClearValidation(c)
	Recompute(c)
}

// SaveForLater moves a line out of the active cart, dropping quantity and
// pricing. Unknown ids are a no-op.
func SaveForLater(c *domain.Cart, itemID string) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			item := c.Items[i]
			c.SavedForLater = append(c.SavedForLater, domain.SavedItem{
				ID:            uuid.New().String(),
				ProductID:     item.ProductID,
				Product:       item.Product,
				Customization: item.Customization,
				SavedAt:       time.Now(),
			})
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			Recompute(c)
			return
		}
	}
}

// MoveToCart reconstructs a fresh quantity-1 line from a saved item. When
// merge is set, a line with matching product and customization absorbs it
// instead of a second line appearing.
func MoveToCart(c *domain.Cart, savedItemID string, merge bool) {
	for i := range c.SavedForLater {
		if c.SavedForLater[i].ID != savedItemID {
			continue
		}
		saved := c.SavedForLater[i]
		c.SavedForLater = append(c.SavedForLater[:i], c.SavedForLater[i+1:]...)

		if merge {
			AddItem(c, NewItem{
				ProductID:     saved.ProductID,
				Product:       saved.Product,
				Quantity:      1,
				Customization: saved.Customization,
			})
			return
		}

		price := unitPrice(saved.Product, saved.Customization)
		c.Items = append(c.Items, domain.CartItem{
			ID:            uuid.New().String(),
			ProductID:     saved.ProductID,
			Product:       saved.Product,
			Quantity:      1,
			Customization: saved.Customization,
			UnitPrice:     price,
			TotalPrice:    price,
			AddedAt:       time.Now(),
		})
		Recompute(c)
		return
	}
}

func RemoveSavedItem(c *domain.Cart, savedItemID string) {
	for i := range c.SavedForLater {
		if c.SavedForLater[i].ID == savedItemID {
			c.SavedForLater = append(c.SavedForLater[:i], c.SavedForLater[i+1:]...)
			return
		}
	}
}

// ApplyCoupon replaces the single coupon slot. Minimum-order enforcement
// belongs to the coupon validation service, not here.
func ApplyCoupon(c *domain.Cart, coupon domain.AppliedCoupon) {
	c.Coupon = &coupon
	Recompute(c)
}

func RemoveCoupon(c *domain.Cart) {
	c.Coupon = nil
	Recompute(c)
}

// SetDeliveryOption selects a delivery option (nil clears the selection) and
// recomputes shipping-dependent totals.
func SetDeliveryOption(c *domain.Cart, option *domain.DeliveryOption) {
	c.Delivery = option
	Recompute(c)
}

func ItemByID(c *domain.Cart, itemID string) (*domain.CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// ItemByProduct matches on product id plus canonical customization key,
// mirroring the add-merge rule.
func ItemByProduct(c *domain.Cart, productID string, customization *domain.Customization) (*domain.CartItem, bool) {
	key := customization.Key()
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Customization.Key() == key {
			return &c.Items[i], true
		}
	}
	return nil, false
}

func AddValidationError(c *domain.Cart, issue domain.ValidationIssue) {
	c.Validation.Validated = true
	c.Validation.Valid = false
	c.Validation.Errors = append(c.Validation.Errors, issue)
}

func AddValidationWarning(c *domain.Cart, issue domain.ValidationIssue) {
	c.Validation.Warnings = append(c.Validation.Warnings, issue)
}

func SetValidation(c *domain.Cart, v domain.CartValidation) {
	v.Validated = true
	c.Validation = v
}

func ClearValidation(c *domain.Cart) {
	c.Validation = domain.CartValidation{}
}
