package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltkart/storefront/internal/domain"
	"github.com/voltkart/storefront/internal/events"
	"github.com/voltkart/storefront/internal/wishlist"
)

type wishlistServiceMock struct {
	wl        *domain.Wishlist
	added     bool
	err       error
	lastAdded domain.Product
}

func (m *wishlistServiceMock) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return m.wl, m.err
}

func (m *wishlistServiceMock) AddToWishlist(ctx context.Context, userID string, product domain.Product, opts wishlist.NotifyOptions) (*domain.Wishlist, error) {
	m.lastAdded = product
	return m.wl, m.err
}

func (m *wishlistServiceMock) RemoveFromWishlist(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	return m.wl, m.err
}

func (m *wishlistServiceMock) ClearWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return m.wl, m.err
}

func (m *wishlistServiceMock) AddToCompare(ctx context.Context, userID string, product domain.Product) (bool, *domain.Wishlist, error) {
	return m.added, m.wl, m.err
}

func (m *wishlistServiceMock) RemoveFromCompare(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	return m.wl, m.err
}

func (m *wishlistServiceMock) ClearCompare(ctx context.Context, userID string) (*domain.Wishlist, error) {
	return m.wl, m.err
}

func (m *wishlistServiceMock) RefreshPrices(ctx context.Context, userID string, catalog wishlist.Catalog) (*domain.Wishlist, error) {
	return m.wl, m.err
}

type catalogStub struct {
	product *domain.Product
	err     error
}

func (catalogStub) GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	return map[string]domain.Product{}, nil
}

func (s catalogStub) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.product != nil {
		return s.product, nil
	}
	return &domain.Product{ID: id}, nil
}

func newWishlistHandler(svc *wishlistServiceMock, ev *eventsMock) *WishlistHandler {
	return NewWishlistHandler(svc, catalogStub{}, ev, 5*time.Second)
}

func TestWishlistGet_Success(t *testing.T) {
	svc := &wishlistServiceMock{wl: &domain.Wishlist{UserID: "u1"}}
	handler := newWishlistHandler(svc, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.Get(rec, authedRequest("GET", "/api/v1/wishlist", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var wl domain.Wishlist
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&wl))
	assert.Equal(t, "u1", wl.UserID)
}

func TestWishlistGet_Unauthorized(t *testing.T) {
	handler := newWishlistHandler(&wishlistServiceMock{}, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest("GET", "/api/v1/wishlist", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWishlistAddItem_PublishesEvent(t *testing.T) {
	svc := &wishlistServiceMock{wl: &domain.Wishlist{UserID: "u1"}}
	ev := &eventsMock{}
	handler := newWishlistHandler(svc, ev)

	body, _ := json.Marshal(AddWishlistItemRequestDTO{
		Product:         domain.Product{ID: "inv-1", Name: "Luminous 1100VA", BasePrice: 7499},
		NotifyPriceDrop: true,
	})

	rec := httptest.NewRecorder()
	handler.AddItem(rec, authedRequest("POST", "/api/v1/wishlist/items", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, ev.types(), events.EventWishlistItemAdded)
}

func TestWishlistAddItem_ByProductID(t *testing.T) {
	svc := &wishlistServiceMock{wl: &domain.Wishlist{UserID: "u1"}}
	ev := &eventsMock{}
	handler := NewWishlistHandler(svc, catalogStub{
		product: &domain.Product{ID: "inv-1", Name: "Luminous 1100VA", BasePrice: 7499},
	}, ev, 5*time.Second)

	body, _ := json.Marshal(AddWishlistItemRequestDTO{ProductID: "inv-1"})
	rec := httptest.NewRecorder()
	handler.AddItem(rec, authedRequest("POST", "/api/v1/wishlist/items", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "inv-1", svc.lastAdded.ID)
	assert.Equal(t, 7499.0, svc.lastAdded.BasePrice)
}

func TestWishlistAddItem_CatalogDown(t *testing.T) {
	handler := NewWishlistHandler(&wishlistServiceMock{wl: &domain.Wishlist{}}, catalogStub{err: errors.New("connection refused")}, &eventsMock{}, 5*time.Second)

	body, _ := json.Marshal(AddWishlistItemRequestDTO{ProductID: "inv-1"})
	rec := httptest.NewRecorder()
	handler.AddItem(rec, authedRequest("POST", "/api/v1/wishlist/items", body))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWishlistAddItem_MissingProduct(t *testing.T) {
	handler := newWishlistHandler(&wishlistServiceMock{wl: &domain.Wishlist{}}, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.AddItem(rec, authedRequest("POST", "/api/v1/wishlist/items", []byte(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddToCompare_Full(t *testing.T) {
	svc := &wishlistServiceMock{wl: &domain.Wishlist{UserID: "u1"}, added: false}
	handler := newWishlistHandler(svc, &eventsMock{})

	body, _ := json.Marshal(AddCompareItemRequestDTO{Product: domain.Product{ID: "inv-5"}})
	rec := httptest.NewRecorder()
	handler.AddToCompare(rec, authedRequest("POST", "/api/v1/wishlist/compare", body))

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "compare_full", resp.Code)
}

func TestAddToCompare_Added(t *testing.T) {
	svc := &wishlistServiceMock{wl: &domain.Wishlist{UserID: "u1"}, added: true}
	handler := newWishlistHandler(svc, &eventsMock{})

	body, _ := json.Marshal(AddCompareItemRequestDTO{Product: domain.Product{ID: "inv-2"}})
	rec := httptest.NewRecorder()
	handler.AddToCompare(rec, authedRequest("POST", "/api/v1/wishlist/compare", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRefreshPrices_CatalogDown(t *testing.T) {
	svc := &wishlistServiceMock{err: errors.New("catalog unavailable")}
	handler := newWishlistHandler(svc, &eventsMock{})

	rec := httptest.NewRecorder()
	handler.RefreshPrices(rec, authedRequest("POST", "/api/v1/wishlist/refresh", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
