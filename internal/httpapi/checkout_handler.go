package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/voltkart/storefront/internal/checkout"
	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/events"
)

// PaymentStatusChecker queries the gateway for the live state of a
// transaction.
type PaymentStatusChecker interface {
	GetStatus(ctx context.Context, transactionID string) (domain.PaymentStatus, string, error)
}

type CheckoutHandler struct {
	sessions *checkout.Store
	carts    checkout.CartReader
	gateway  checkout.PaymentInitiator
	status   PaymentStatusChecker
	events   EventPublisher
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *checkout.Store, carts checkout.CartReader, gateway checkout.PaymentInitiator, status PaymentStatusChecker, events EventPublisher, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		carts:    carts,
		gateway:  gateway,
		status:   status,
		events:   events,
		timeout:  timeout,
	}
}

type SetStepRequestDTO struct {
	Step domain.CheckoutStep `json:"step"`
}

type SetAddressRequestDTO struct {
	Shipping         domain.Address  `json:"shipping"`
	Billing          *domain.Address `json:"billing,omitempty"`
	UseSameAsBilling bool            `json:"use_same_as_billing"`
}

type SetCheckoutDeliveryRequestDTO struct {
	Option domain.DeliveryOption `json:"option"`
}

type SetPaymentMethodRequestDTO struct {
	Method domain.PaymentMethod `json:"method"`
}

type PaymentStatusRequestDTO struct {
	Status        domain.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id,omitempty"`
	Error         string               `json:"error,omitempty"`
}

func (h *CheckoutHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess := h.sessions.StartSession(userID)
	respondJSON(w, http.StatusCreated, sess)
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, checkout.Summary(sess))
}

// NextStep advances the wizard one step, refusing when the prerequisites of
// the next step are not met yet.
func (h *CheckoutHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	idx := sess.CurrentStep.Index()
	if idx < 0 || idx >= len(domain.StepOrder)-1 {
		respondError(w, http.StatusConflict, "step_not_allowed", "already at the last step")
		return
	}
	next := domain.StepOrder[idx+1]
	if !checkout.CanProceedTo(sess, next) {
		respondError(w, http.StatusConflict, "step_not_allowed", "complete the current step first")
		return
	}

	sess, err = h.sessions.NextStep(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.PreviousStep(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SetStepRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Step.Index() < 0 {
		respondError(w, http.StatusBadRequest, "invalid_step", "unknown checkout step")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}
	if !checkout.CanProceedTo(sess, req.Step) {
		respondError(w, http.StatusConflict, "step_not_allowed", "prerequisites for this step are not met")
		return
	}

	sess, err = h.sessions.SetStep(userID, req.Step)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SetAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Shipping.Line1 == "" || req.Shipping.Pincode == "" {
		respondError(w, http.StatusBadRequest, "invalid_address", "shipping address needs line1 and pincode")
		return
	}

	if _, err := h.sessions.SetShippingAddress(userID, req.Shipping); err != nil {
		handleCheckoutError(w, r, err)
		return
	}
	sess, err := h.sessions.SetBillingAddress(userID, req.Billing, req.UseSameAsBilling)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SetCheckoutDeliveryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Option.ID == "" {
		respondError(w, http.StatusBadRequest, "invalid_delivery", "delivery option id is required")
		return
	}

	sess, err := h.sessions.SetDeliveryOption(userID, req.Option)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SetPaymentMethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Method.Type == "" {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment method type is required")
		return
	}

	sess, err := h.sessions.SetPaymentMethod(userID, req.Method)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// Submit hands the order to the payment gateway. Gateway failures surface as
// 402 with the payment sub-state carrying the error for a later retry.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.Submit(ctx, userID, h.carts, h.gateway)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "not_found", "no active checkout session")
		case errors.Is(err, checkout.ErrNotReadyForPayment):
			respondError(w, http.StatusConflict, "not_ready", "checkout is not ready for payment")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
		default:
			h.events.Publish(events.EventPaymentFailed, userID, events.PaymentFailedPayload{
				UserID:     userID,
				SessionID:  sess.ID,
				Reason:     err.Error(),
				RetryCount: sess.Payment.RetryCount,
			})
			respondError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
		}
		return
	}

	c, cartErr := h.carts.GetCart(ctx, userID)
	total := 0.0
	itemCount := 0
	if cartErr == nil {
		total = c.Totals.Total
		itemCount = len(c.Items)
	}
	h.events.Publish(events.EventCheckoutSubmitted, userID, events.CheckoutSubmittedPayload{
		UserID:    userID,
		SessionID: sess.ID,
		OrderID:   sess.OrderID,
		ItemCount: itemCount,
		Total:     total,
		Currency:  "INR",
	})

	respondJSON(w, http.StatusOK, sess)
}

func (h *CheckoutHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}
	if sess.Payment.Status != domain.PaymentFailed {
		respondError(w, http.StatusConflict, "invalid_transition", "only a failed payment can be retried")
		return
	}

	sess, err = h.sessions.RetryPayment(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// PaymentStatus is the gateway callback. Transitions outside the payment
// state machine are refused with 409.
func (h *CheckoutHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req PaymentStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}
	if !domain.CanTransitionPayment(sess.Payment.Status, req.Status) {
		respondError(w, http.StatusConflict, "invalid_transition", "payment status transition not allowed")
		return
	}

	if req.Status == domain.PaymentFailed {
		if req.Error == "" {
			req.Error = "payment failed"
		}
		sess, err = h.sessions.SetPaymentError(userID, req.Error)
		if err == nil {
			h.events.Publish(events.EventPaymentFailed, userID, events.PaymentFailedPayload{
				UserID:     userID,
				SessionID:  sess.ID,
				Reason:     req.Error,
				RetryCount: sess.Payment.RetryCount,
			})
		}
	} else {
		sess, err = h.sessions.SetPaymentStatus(userID, req.Status, req.TransactionID)
	}
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

// PollPayment asks the gateway for the current status of the session's
// transaction and folds the answer into the payment sub-state. Statuses the
// state machine forbids are ignored with 409, matching the callback path.
func (h *CheckoutHandler) PollPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sess, err := h.sessions.GetSession(userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}
	if sess.Payment.TransactionID == "" {
		respondError(w, http.StatusConflict, "no_transaction", "no payment transaction to poll")
		return
	}

	status, gatewayMsg, err := h.status.GetStatus(ctx, sess.Payment.TransactionID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "gateway_unavailable", "payment gateway is unreachable")
		return
	}
	if status == sess.Payment.Status {
		respondJSON(w, http.StatusOK, sess)
		return
	}
	if !domain.CanTransitionPayment(sess.Payment.Status, status) {
		respondError(w, http.StatusConflict, "invalid_transition", "payment status transition not allowed")
		return
	}

	if status == domain.PaymentFailed {
		if gatewayMsg == "" {
			gatewayMsg = "payment failed"
		}
		sess, err = h.sessions.SetPaymentError(userID, gatewayMsg)
		if err == nil {
			h.events.Publish(events.EventPaymentFailed, userID, events.PaymentFailedPayload{
				UserID:     userID,
				SessionID:  sess.ID,
				Reason:     gatewayMsg,
				RetryCount: sess.Payment.RetryCount,
			})
		}
	} else {
		sess, err = h.sessions.SetPaymentStatus(userID, status, sess.Payment.TransactionID)
	}
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, sess)
}

func handleCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "no active checkout session")
	default:
		respondServerError(w, r, err, "internal server error")
	}
}
