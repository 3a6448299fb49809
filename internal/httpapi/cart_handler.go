package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voltkart/storefront/internal/cart"
	"github.com/voltkart/storefront/internal/clients"
	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/events"
)

// CartService is the cart store surface the handler needs.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, n cart.NewItem) (*domain.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) (*domain.Cart, error)
	SaveForLater(ctx context.Context, userID, itemID string) (*domain.Cart, error)
	MoveToCart(ctx context.Context, userID, savedItemID string) (*domain.Cart, error)
	RemoveSavedItem(ctx context.Context, userID, savedItemID string) (*domain.Cart, error)
	ApplyCoupon(ctx context.Context, userID string, coupon domain.AppliedCoupon) (*domain.Cart, error)
	RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error)
	SetDeliveryOption(ctx context.Context, userID string, option *domain.DeliveryOption) (*domain.Cart, error)
	SetDeliveryPincode(ctx context.Context, userID, pincode string) (*domain.Cart, error)
	Validate(ctx context.Context, userID string, validator cart.CartValidator) (*domain.Cart, error)
}

// CouponValidator checks a coupon code against the coupon service.
type CouponValidator interface {
	Validate(ctx context.Context, code, userID string, orderValue float64) (*clients.CouponResult, error)
}

// EventPublisher is the fire-and-forget activity event sink.
type EventPublisher interface {
	Publish(eventType, userID string, payload any)
}

type CartHandler struct {
	carts     CartService
	coupons   CouponValidator
	validator cart.CartValidator
	events    EventPublisher
	timeout   time.Duration
}

func NewCartHandler(carts CartService, coupons CouponValidator, validator cart.CartValidator, events EventPublisher, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:     carts,
		coupons:   coupons,
		validator: validator,
		events:    events,
		timeout:   timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID     string                `json:"product_id"`
	Product       domain.Product        `json:"product"`
	Quantity      int                   `json:"quantity"`
	Customization *domain.Customization `json:"customization,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequestDTO struct {
	Code string `json:"code"`
}

type SetDeliveryRequestDTO struct {
	Option *domain.DeliveryOption `json:"option"`
}

type SetPincodeRequestDTO struct {
	Pincode string `json:"pincode"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	c, err := h.carts.AddItem(ctx, userID, cart.NewItem{
		ProductID:     req.ProductID,
		Product:       req.Product,
		Quantity:      req.Quantity,
		Customization: req.Customization,
	})
	if err != nil {
		respondServerError(w, r, err, "failed to add item")
		return
	}

	h.events.Publish(events.EventCartItemAdded, userID, events.CartItemAddedPayload{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.Product.BasePrice,
		CartTotal: c.Totals.Total,
	})

	respondJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// zero and below removes the line, so only the upper bound is enforced here
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	c, err := h.carts.UpdateItemQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		respondServerError(w, r, err, "failed to update quantity")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	c, err := h.carts.RemoveItem(ctx, userID, itemID)
	if err != nil {
		respondServerError(w, r, err, "failed to remove item")
		return
	}

	h.events.Publish(events.EventCartItemRemoved, userID, map[string]string{
		"user_id": userID,
		"item_id": itemID,
	})

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.ClearCart(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to clear cart")
		return
	}

	h.events.Publish(events.EventCartCleared, userID, map[string]string{"user_id": userID})

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) SaveForLater(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.SaveForLater(ctx, userID, chi.URLParam(r, "item_id"))
	if err != nil {
		respondServerError(w, r, err, "failed to save item")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.MoveToCart(ctx, userID, chi.URLParam(r, "saved_id"))
	if err != nil {
		respondServerError(w, r, err, "failed to move item to cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveSavedItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.RemoveSavedItem(ctx, userID, chi.URLParam(r, "saved_id"))
	if err != nil {
		respondServerError(w, r, err, "failed to remove saved item")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// ApplyCoupon validates the code with the coupon service first; only codes
// the service accepts reach the cart. A rejected code returns 422 with the
// service's reason.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req ApplyCouponRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "coupon code is required")
		return
	}

	current, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to load cart")
		return
	}

	result, err := h.coupons.Validate(ctx, req.Code, userID, current.Totals.Subtotal)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "coupon_service_unavailable", "could not validate coupon")
		return
	}
	if !result.Valid {
		respondError(w, http.StatusUnprocessableEntity, "coupon_rejected", result.Reason)
		return
	}

	c, err := h.carts.ApplyCoupon(ctx, userID, *result.Coupon)
	if err != nil {
		respondServerError(w, r, err, "failed to apply coupon")
		return
	}

	h.events.Publish(events.EventCouponApplied, userID, events.CouponAppliedPayload{
		UserID:         userID,
		Code:           result.Coupon.Code,
		DiscountAmount: c.Totals.DiscountAmount,
	})

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.RemoveCoupon(ctx, userID)
	if err != nil {
		respondServerError(w, r, err, "failed to remove coupon")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SetDeliveryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.carts.SetDeliveryOption(ctx, userID, req.Option)
	if err != nil {
		respondServerError(w, r, err, "failed to set delivery option")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) SetPincode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SetPincodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Pincode == "" {
		respondError(w, http.StatusBadRequest, "invalid_pincode", "pincode is required")
		return
	}

	c, err := h.carts.SetDeliveryPincode(ctx, userID, req.Pincode)
	if err != nil {
		respondServerError(w, r, err, "failed to set pincode")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	c, err := h.carts.Validate(ctx, userID, h.validator)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "validation_unavailable", "could not validate cart")
		return
	}

	respondJSON(w, http.StatusOK, c)
}
