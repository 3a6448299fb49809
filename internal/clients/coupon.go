package clients

import (
	"context"
	"time"

	"github.com/voltkart/storefront/internal/domain"
)

// CouponClient wraps the coupon validation service.
type CouponClient struct {
	restClient
}

func NewCouponClient(baseURL string, timeout time.Duration) *CouponClient {
	return &CouponClient{newRESTClient("coupon-service", baseURL, timeout)}
}

type couponValidateRequest struct {
	Code       string  `json:"code"`
	UserID     string  `json:"user_id"`
	OrderValue float64 `json:"order_value"`
}

// CouponResult is the service's verdict. When Valid is false, Reason
// explains the rejection and MinOrderValue hints at the threshold for
// min-order rejections.
type CouponResult struct {
	Valid         bool                  `json:"valid"`
	Coupon        *domain.AppliedCoupon `json:"coupon,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	MinOrderValue float64               `json:"min_order_value,omitempty"`
}

func (c *CouponClient) Validate(ctx context.Context, code, userID string, orderValue float64) (*CouponResult, error) {
	var result CouponResult
	err := c.postJSON(ctx, "/coupons/validate", couponValidateRequest{
		Code:       code,
		UserID:     userID,
		OrderValue: orderValue,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
