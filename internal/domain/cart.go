package domain

import (
	"sort"
	"strings"
	"time"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// Product is the catalog snapshot embedded in cart, saved and wishlist
// entries. It is copied at add time so later catalog changes never mutate a
// line without an explicit validation pass.
type Product struct {
	ID          string      `bson:"id" json:"id"`
	Name        string      `bson:"name" json:"name"`
	BasePrice   float64     `bson:"base_price" json:"base_price"`
	StockStatus StockStatus `bson:"stock_status" json:"stock_status"`
	ImageURL    string      `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

type CustomizationOption struct {
	ComponentID   string  `bson:"component_id" json:"component_id"`
	Type          string  `bson:"type" json:"type"` // voltage | capacity | connector | dimension | usage_type
	Label         string  `bson:"label" json:"label"`
	PriceModifier float64 `bson:"price_modifier" json:"price_modifier"`
	LeadTimeDays  int     `bson:"lead_time_days" json:"lead_time_days"`
}

// Customization is a selected battery configuration. TotalPrice is the full
// unit price of the configured product (base price plus modifiers).
type Customization struct {
	Options    []CustomizationOption `bson:"options" json:"options"`
	TotalPrice float64               `bson:"total_price" json:"total_price"`
}

// Key returns an order-independent identity for merge matching: component ids
// sorted and joined. A nil or empty customization yields the empty key.
func (c *Customization) Key() string {
	if c == nil || len(c.Options) == 0 {
		return ""
	}
	ids := make([]string, 0, len(c.Options))
	for _, opt := range c.Options {
		ids = append(ids, opt.ComponentID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

type CartItem struct {
	ID            string         `bson:"id" json:"id"`
	ProductID     string         `bson:"product_id" json:"product_id"`
	Product       Product        `bson:"product" json:"product"`
	Quantity      int            `bson:"quantity" json:"quantity"`
	Customization *Customization `bson:"customization,omitempty" json:"customization,omitempty"`
	UnitPrice     float64        `bson:"unit_price" json:"unit_price"`
	TotalPrice    float64        `bson:"total_price" json:"total_price"`
	AddedAt       time.Time      `bson:"added_at" json:"added_at"`
}

// SavedItem is a cart line moved out of the active cart. Quantity and pricing
// are dropped; moving back re-creates a fresh line with quantity 1.
type SavedItem struct {
	ID            string         `bson:"id" json:"id"`
	ProductID     string         `bson:"product_id" json:"product_id"`
	Product       Product        `bson:"product" json:"product"`
	Customization *Customization `bson:"customization,omitempty" json:"customization,omitempty"`
	SavedAt       time.Time      `bson:"saved_at" json:"saved_at"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// AppliedCoupon is the descriptor returned by the coupon validation service.
// MaxDiscount caps percentage discounts; zero means no cap.
type AppliedCoupon struct {
	Code          string       `bson:"code" json:"code"`
	DiscountType  DiscountType `bson:"discount_type" json:"discount_type"`
	DiscountValue float64      `bson:"discount_value" json:"discount_value"`
	MaxDiscount   float64      `bson:"max_discount,omitempty" json:"max_discount,omitempty"`
	MinOrderValue float64      `bson:"min_order_value,omitempty" json:"min_order_value,omitempty"`
}

type DeliveryType string

const (
	DeliveryStandard DeliveryType = "standard"
	DeliveryExpress  DeliveryType = "express"
	DeliveryCustom   DeliveryType = "custom"
)

type DeliveryOption struct {
	ID            string       `bson:"id" json:"id"`
	Type          DeliveryType `bson:"type" json:"type"`
	Cost          float64      `bson:"cost" json:"cost"`
	EstimatedDays int          `bson:"estimated_days" json:"estimated_days"`
}

// Validation issue codes produced by the cart validation service. The cart
// only stores them; it never computes them.
const (
	IssueOutOfStock           = "out_of_stock"
	IssuePriceChanged         = "price_changed"
	IssueInvalidCustomization = "invalid_customization"
	IssueDeliveryUnavailable  = "delivery_unavailable"
	IssueMinOrder             = "min_order"
	IssueMaxQuantity          = "max_quantity"

	WarnLowStock      = "low_stock"
	WarnPriceDrop     = "price_drop"
	WarnDeliveryDelay = "delivery_delay"
)

type ValidationIssue struct {
	ItemID  string `json:"item_id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CartValidation struct {
	Validated bool              `json:"validated"`
	Valid     bool              `json:"valid"`
	Errors    []ValidationIssue `json:"errors,omitempty"`
	Warnings  []ValidationIssue `json:"warnings,omitempty"`
}

// Totals is the derived monetary breakdown. Never persisted; recomputed from
// items, coupon and delivery selection after every load and mutation.
type Totals struct {
	ItemCount         int     `json:"item_count"`
	Subtotal          float64 `json:"subtotal"`
	CustomizationCost float64 `json:"customization_cost"`
	TaxAmount         float64 `json:"tax_amount"`
	ShippingCost      float64 `json:"shipping_cost"`
	DiscountAmount    float64 `json:"discount_amount"`
	Total             float64 `json:"total"`
}

// Cart is the persisted per-user cart document. Totals and Validation are
// session-only and excluded from storage.
type Cart struct {
	ID              string          `bson:"_id,omitempty" json:"-"`
	UserID          string          `bson:"user_id" json:"user_id"`
	Items           []CartItem      `bson:"items" json:"items"`
	SavedForLater   []SavedItem     `bson:"saved_for_later" json:"saved_for_later"`
	Coupon          *AppliedCoupon  `bson:"coupon,omitempty" json:"coupon,omitempty"`
	Delivery        *DeliveryOption `bson:"delivery,omitempty" json:"delivery,omitempty"`
	DeliveryPincode string          `bson:"delivery_pincode,omitempty" json:"delivery_pincode,omitempty"`
	Totals          Totals          `bson:"-" json:"totals"`
	Validation      CartValidation  `bson:"-" json:"validation"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
}

// ShippingCost is the cost of the selected delivery option, zero when none is
// selected.
func (c *Cart) ShippingCost() float64 {
	if c.Delivery == nil {
		return 0
	}
	return c.Delivery.Cost
}
