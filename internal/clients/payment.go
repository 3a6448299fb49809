package clients

import (
	"context"
	"time"

	"github.com/voltkart/storefront/internal/checkout"
	"github.com/voltkart/storefront/internal/domain"
)

// PaymentClient wraps the order submission / payment gateway collaborator.
type PaymentClient struct {
	restClient
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{newRESTClient("payment-gateway", baseURL, timeout)}
}

// Initialize creates the order and opens a payment attempt. The idempotency
// key in the request makes a retried submit safe.
func (c *PaymentClient) Initialize(ctx context.Context, req checkout.PaymentRequest) (*checkout.PaymentResult, error) {
	var result checkout.PaymentResult
	if err := c.postJSON(ctx, "/payments/initialize", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type paymentStatusResponse struct {
	TransactionID string               `json:"transaction_id"`
	Status        domain.PaymentStatus `json:"status"`
	Error         string               `json:"error,omitempty"`
}

// GetStatus polls the gateway for a transaction's outcome.
func (c *PaymentClient) GetStatus(ctx context.Context, transactionID string) (domain.PaymentStatus, string, error) {
	var resp paymentStatusResponse
	if err := c.getJSON(ctx, "/payments/"+transactionID, &resp); err != nil {
		return "", "", err
	}
	return resp.Status, resp.Error, nil
}
