package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltkart/storefront/internal/cart"
	"github.com/voltkart/storefront/internal/clients"
	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/events"
)

type cartServiceMock struct {
	mu         sync.Mutex
	cart       *domain.Cart
	err        error
	lastCoupon *domain.AppliedCoupon
}

func (m *cartServiceMock) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) AddItem(ctx context.Context, userID string, n cart.NewItem) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) SaveForLater(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) MoveToCart(ctx context.Context, userID, savedItemID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) RemoveSavedItem(ctx context.Context, userID, savedItemID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) ApplyCoupon(ctx context.Context, userID string, coupon domain.AppliedCoupon) (*domain.Cart, error) {
	m.mu.Lock()
	m.lastCoupon = &coupon
	m.mu.Unlock()
	return m.cart, m.err
}

func (m *cartServiceMock) RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) SetDeliveryOption(ctx context.Context, userID string, option *domain.DeliveryOption) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) SetDeliveryPincode(ctx context.Context, userID, pincode string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) Validate(ctx context.Context, userID string, v cart.CartValidator) (*domain.Cart, error) {
	return m.cart, m.err
}

type couponMock struct {
	result *clients.CouponResult
	err    error
}

func (m *couponMock) Validate(ctx context.Context, code, userID string, orderValue float64) (*clients.CouponResult, error) {
	return m.result, m.err
}

type eventsMock struct {
	mu        sync.Mutex
	published []string
}

func (m *eventsMock) Publish(eventType, userID string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, eventType)
}

func (m *eventsMock) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.published))
	copy(out, m.published)
	return out
}

type validatorStub struct{}

func (validatorStub) ValidateCart(ctx context.Context, c *domain.Cart) (*domain.CartValidation, error) {
	return &domain.CartValidation{Validated: true, Valid: true}, nil
}

func authedRequest(method, target string, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), "user_id", "u1")
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func newCartHandler(svc *cartServiceMock, coupons *couponMock, ev *eventsMock) *CartHandler {
	return NewCartHandler(svc, coupons, validatorStub{}, ev, 5*time.Second)
}

func TestGetCart_Success(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "u1"}}
	handler := newCartHandler(svc, &couponMock{}, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.GetCart(rec, authedRequest("GET", "/api/v1/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var c domain.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, "u1", c.UserID)
}

func TestGetCart_Unauthorized(t *testing.T) {
	handler := newCartHandler(&cartServiceMock{}, &couponMock{}, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.GetCart(rec, httptest.NewRequest("GET", "/api/v1/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddItem_Success(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "u1"}}
	ev := &eventsMock{}
	handler := newCartHandler(svc, &couponMock{}, ev)

	body, _ := json.Marshal(AddItemRequestDTO{
		ProductID: "bat-1",
		Product:   domain.Product{ID: "bat-1", Name: "Exide 150Ah", BasePrice: 5999},
		Quantity:  2,
	})

	rec := httptest.NewRecorder()
	handler.AddItem(rec, authedRequest("POST", "/api/v1/cart/items", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, ev.types(), events.EventCartItemAdded)
}

func TestAddItem_QuantityOutOfRange(t *testing.T) {
	handler := newCartHandler(&cartServiceMock{cart: &domain.Cart{}}, &couponMock{}, &eventsMock{})

	for _, qty := range []int{0, -1, 100} {
		body, _ := json.Marshal(AddItemRequestDTO{ProductID: "bat-1", Quantity: qty})
		rec := httptest.NewRecorder()
		handler.AddItem(rec, authedRequest("POST", "/api/v1/cart/items", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity %d", qty)
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := newCartHandler(&cartServiceMock{cart: &domain.Cart{}}, &couponMock{}, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.AddItem(rec, authedRequest("POST", "/api/v1/cart/items", []byte("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity_OverLimit(t *testing.T) {
	handler := newCartHandler(&cartServiceMock{cart: &domain.Cart{}}, &couponMock{}, &eventsMock{})

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 100})
	rec := httptest.NewRecorder()
	r := withURLParam(authedRequest("PUT", "/api/v1/cart/items/i1", body), "item_id", "i1")
	handler.UpdateQuantity(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "u1"}}
	handler := newCartHandler(svc, &couponMock{}, &eventsMock{})

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 0})
	rec := httptest.NewRecorder()
	r := withURLParam(authedRequest("PUT", "/api/v1/cart/items/i1", body), "item_id", "i1")
	handler.UpdateQuantity(rec, r)

	// zero is passed through: the store treats it as removal
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRemoveItem_PublishesEvent(t *testing.T) {
	ev := &eventsMock{}
	handler := newCartHandler(&cartServiceMock{cart: &domain.Cart{}}, &couponMock{}, ev)

	rec := httptest.NewRecorder()
	r := withURLParam(authedRequest("DELETE", "/api/v1/cart/items/i1", nil), "item_id", "i1")
	handler.RemoveItem(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ev.types(), events.EventCartItemRemoved)
}

func TestApplyCoupon_Accepted(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{
		UserID: "u1",
		Totals: domain.Totals{Subtotal: 11998, DiscountAmount: 500},
	}}
	coupons := &couponMock{result: &clients.CouponResult{
		Valid: true,
		Coupon: &domain.AppliedCoupon{
			Code:          "SAVE500",
			DiscountType:  domain.DiscountFixed,
			DiscountValue: 500,
		},
	}}
	ev := &eventsMock{}
	handler := newCartHandler(svc, coupons, ev)

	body, _ := json.Marshal(ApplyCouponRequestDTO{Code: "SAVE500"})
	rec := httptest.NewRecorder()
	handler.ApplyCoupon(rec, authedRequest("POST", "/api/v1/cart/coupon", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastCoupon)
	assert.Equal(t, "SAVE500", svc.lastCoupon.Code)
	assert.Contains(t, ev.types(), events.EventCouponApplied)
}

func TestApplyCoupon_Rejected(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "u1"}}
	coupons := &couponMock{result: &clients.CouponResult{
		Valid:  false,
		Reason: "coupon expired",
	}}
	handler := newCartHandler(svc, coupons, &eventsMock{})

	body, _ := json.Marshal(ApplyCouponRequestDTO{Code: "OLD"})
	rec := httptest.NewRecorder()
	handler.ApplyCoupon(rec, authedRequest("POST", "/api/v1/cart/coupon", body))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "coupon_rejected", resp.Code)
	assert.Equal(t, "coupon expired", resp.Error)
	assert.Nil(t, svc.lastCoupon)
}

func TestApplyCoupon_ServiceDown(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "u1"}}
	coupons := &couponMock{err: errors.New("connection refused")}
	handler := newCartHandler(svc, coupons, &eventsMock{})

	body, _ := json.Marshal(ApplyCouponRequestDTO{Code: "SAVE500"})
	rec := httptest.NewRecorder()
	handler.ApplyCoupon(rec, authedRequest("POST", "/api/v1/cart/coupon", body))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSetPincode_Missing(t *testing.T) {
	handler := newCartHandler(&cartServiceMock{cart: &domain.Cart{}}, &couponMock{}, &eventsMock{})

	body, _ := json.Marshal(SetPincodeRequestDTO{})
	rec := httptest.NewRecorder()
	handler.SetPincode(rec, authedRequest("PUT", "/api/v1/cart/pincode", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCart_PublishesEvent(t *testing.T) {
	ev := &eventsMock{}
	handler := newCartHandler(&cartServiceMock{cart: &domain.Cart{}}, &couponMock{}, ev)

	rec := httptest.NewRecorder()
	handler.ClearCart(rec, authedRequest("DELETE", "/api/v1/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, ev.types(), events.EventCartCleared)
}
