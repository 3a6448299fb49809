package events

import (
	"encoding/json"
	"time"
)

// Storefront activity event types.
const (
	EventCartItemAdded     = "cart.item.added"
	EventCartItemRemoved   = "cart.item.removed"
	EventCartCleared       = "cart.cleared"
	EventCouponApplied     = "coupon.applied"
	EventCheckoutSubmitted = "checkout.submitted"
	EventPaymentFailed     = "payment.failed"
	EventWishlistItemAdded = "wishlist.item.added"
)

// Envelope is the versioned JSON wrapper every event travels in.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type CartItemAddedPayload struct {
	UserID    string  `json:"user_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	CartTotal float64 `json:"cart_total"`
}

type CouponAppliedPayload struct {
	UserID         string  `json:"user_id"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discount_amount"`
}

type CheckoutSubmittedPayload struct {
	UserID    string  `json:"user_id"`
	SessionID string  `json:"session_id"`
	OrderID   string  `json:"order_id"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
}

type PaymentFailedPayload struct {
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count"`
}

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
