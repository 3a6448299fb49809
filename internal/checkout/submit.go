package checkout

import (
	"context"
	"log"

	"github.com/voltkart/storefront/internal/domain"
)

// CartReader is the read-only view of the cart store the checkout needs when
// constructing an order submission.
type CartReader interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
}

type PaymentRequest struct {
	IdempotencyKey  string                `json:"idempotency_key"`
	UserID          string                `json:"user_id"`
	Amount          float64               `json:"amount"`
	Currency        string                `json:"currency"`
	Method          domain.PaymentMethod  `json:"method"`
	ShippingAddress domain.Address        `json:"shipping_address"`
	Delivery        domain.DeliveryOption `json:"delivery"`
	Coupon          *domain.AppliedCoupon `json:"coupon,omitempty"`
}

type PaymentResult struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	GatewayURL    string `json:"gateway_url,omitempty"`
}

// PaymentInitiator is the order-submission / payment-gateway collaborator.
type PaymentInitiator interface {
	Initialize(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// Submit checks readiness, snapshots the cart totals and hands the order to
// the payment collaborator. The session id doubles as the idempotency key so
// a retried submit cannot double-charge. On gateway failure the payment
// sub-state moves to failed with the error recorded.
func (s *Store) Submit(ctx context.Context, userID string, carts CartReader, gateway PaymentInitiator) (*domain.CheckoutSession, error) {
	sess, err := s.GetSession(userID)
	if err != nil {
		return nil, err
	}

	if !Summary(sess).IsReadyForPayment {
		return sess, ErrNotReadyForPayment
	}

	c, err := carts.GetCart(ctx, userID)
	if err != nil {
		return sess, err
	}
	if len(c.Items) == 0 {
		return sess, ErrEmptyCart
	}

	result, payErr := gateway.Initialize(ctx, PaymentRequest{
		IdempotencyKey:  sess.ID,
		UserID:          userID,
		Amount:          c.Totals.Total,
		Currency:        "INR",
		Method:          *sess.Payment.Method,
		ShippingAddress: *sess.ShippingAddress,
		Delivery:        *sess.Delivery,
		Coupon:          c.Coupon,
	})
	if payErr != nil {
		log.Printf("payment initialization failed for user %s: %v", userID, payErr)
		failed, err := s.SetPaymentError(userID, payErr.Error())
		if err != nil {
			return sess, err
		}
		return failed, payErr
	}

	return s.update(userID, func(sess *domain.CheckoutSession) {
		sess.OrderID = result.OrderID
		sess.Payment.Status = domain.PaymentProcessing
		sess.Payment.TransactionID = result.TransactionID
		sess.Payment.GatewayURL = result.GatewayURL
	})
}
