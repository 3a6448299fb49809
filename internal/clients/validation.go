package clients

import (
	"context"
	"time"

	"github.com/voltkart/storefront/internal/domain"
)

// ValidationClient wraps the cart validation service that re-checks stock,
// prices and delivery serviceability before checkout. The cart store only
// stores the verdict; this is the collaborator that computes it.
type ValidationClient struct {
	restClient
}

func NewValidationClient(baseURL string, timeout time.Duration) *ValidationClient {
	return &ValidationClient{newRESTClient("cart-validation-service", baseURL, timeout)}
}

type cartValidateRequest struct {
	UserID   string                 `json:"user_id"`
	Items    []domain.CartItem      `json:"items"`
	Delivery *domain.DeliveryOption `json:"delivery,omitempty"`
	Pincode  string                 `json:"pincode,omitempty"`
	Coupon   *domain.AppliedCoupon  `json:"coupon,omitempty"`
}

type cartValidateResponse struct {
	IsValid  bool                     `json:"is_valid"`
	Errors   []domain.ValidationIssue `json:"errors,omitempty"`
	Warnings []domain.ValidationIssue `json:"warnings,omitempty"`
}

func (c *ValidationClient) ValidateCart(ctx context.Context, cart *domain.Cart) (*domain.CartValidation, error) {
	var resp cartValidateResponse
	err := c.postJSON(ctx, "/cart/validate", cartValidateRequest{
		UserID:   cart.UserID,
		Items:    cart.Items,
		Delivery: cart.Delivery,
		Pincode:  cart.DeliveryPincode,
		Coupon:   cart.Coupon,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &domain.CartValidation{
		Valid:    resp.IsValid,
		Errors:   resp.Errors,
		Warnings: resp.Warnings,
	}, nil
}
