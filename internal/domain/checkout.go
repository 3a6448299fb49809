package domain

import "time"

type CheckoutStep string

const (
	StepAddress      CheckoutStep = "address"
	StepDelivery     CheckoutStep = "delivery"
	StepPayment      CheckoutStep = "payment"
	StepReview       CheckoutStep = "review"
	StepConfirmation CheckoutStep = "confirmation"
)

// StepOrder is the fixed wizard sequence.
var StepOrder = []CheckoutStep{StepAddress, StepDelivery, StepPayment, StepReview, StepConfirmation}

// Index returns the step's position in the wizard, -1 for unknown steps.
func (s CheckoutStep) Index() int {
	for i, step := range StepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentProcessing        PaymentStatus = "processing"
	PaymentSuccess           PaymentStatus = "success"
	PaymentFailed            PaymentStatus = "failed"
	PaymentCancelled         PaymentStatus = "cancelled"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

var validNextPayment = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:           {PaymentProcessing: true, PaymentFailed: true, PaymentCancelled: true},
	PaymentProcessing:        {PaymentSuccess: true, PaymentFailed: true, PaymentCancelled: true},
	PaymentSuccess:           {PaymentRefunded: true, PaymentPartiallyRefunded: true},
	PaymentFailed:            {PaymentPending: true}, // retry only
	PaymentCancelled:         {},
	PaymentRefunded:          {},
	PaymentPartiallyRefunded: {PaymentRefunded: true},
}

// CanTransitionPayment reports whether a payment status change is legal.
// Advisory: the checkout store itself stores whatever it is given.
func CanTransitionPayment(from, to PaymentStatus) bool {
	return validNextPayment[from][to]
}

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCancelled || s == PaymentRefunded
}

func (s PaymentStatus) String() string {
	return string(s)
}

type Address struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

type PaymentMethod struct {
	ID    string `json:"id"`
	Type  string `json:"type"` // card | upi | netbanking | cod
	Label string `json:"label"`
	Saved bool   `json:"saved"`
}

// PaymentState is the payment-attempt sub-state of a checkout session.
type PaymentState struct {
	Method        *PaymentMethod `json:"method,omitempty"`
	Status        PaymentStatus  `json:"status"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Error         string         `json:"error,omitempty"`
	GatewayURL    string         `json:"gateway_url,omitempty"`
	RetryCount    int            `json:"retry_count"`
}

// NewPaymentState is the initial sub-state for a fresh checkout session.
func NewPaymentState() PaymentState {
	return PaymentState{Status: PaymentPending}
}

// CheckoutSession is session-only wizard state. It is never persisted and
// resets when the session expires.
type CheckoutSession struct {
	ID               string                `json:"id"`
	UserID           string                `json:"user_id"`
	CurrentStep      CheckoutStep          `json:"current_step"`
	Completed        map[CheckoutStep]bool `json:"completed"`
	ShippingAddress  *Address              `json:"shipping_address,omitempty"`
	BillingAddress   *Address              `json:"billing_address,omitempty"`
	UseSameAsBilling bool                  `json:"use_same_as_billing"`
	Delivery         *DeliveryOption       `json:"delivery,omitempty"`
	Payment          PaymentState          `json:"payment"`
	OrderID          string                `json:"order_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	ExpiresAt        time.Time             `json:"expires_at"`
}

type CheckoutSummary struct {
	HasShippingAddress bool `json:"has_shipping_address"`
	HasBillingAddress  bool `json:"has_billing_address"`
	HasDeliveryOption  bool `json:"has_delivery_option"`
	HasPaymentMethod   bool `json:"has_payment_method"`
	IsReadyForPayment  bool `json:"is_ready_for_payment"`
}
